// Package emotions stores and serves emotion-detection log records.
package emotions

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("emotions: log not found")
	ErrInvalidInput = errors.New("emotions: invalid input")
)

// AnonymousUserID is the owner recorded for logs submitted through the
// device API key path without an authenticated user.
const AnonymousUserID = "anonymous_api_key_user"

// MaxNotesLength bounds the free-text notes field.
const MaxNotesLength = 500

// DefaultInputLanguage is applied when the client does not say which
// language the audio sample was in.
const DefaultInputLanguage = "id"

// Feedback classifies how the user rated a detection result.
type Feedback string

const (
	FeedbackAccurate    Feedback = "accurate"
	FeedbackInaccurate  Feedback = "inaccurate"
	FeedbackNeutral     Feedback = "neutral"
	FeedbackNotProvided Feedback = "not_provided"
)

func (f Feedback) Valid() bool {
	switch f {
	case FeedbackAccurate, FeedbackInaccurate, FeedbackNeutral, FeedbackNotProvided:
		return true
	}
	return false
}

// EmotionLog records one detection event. Only Feedback and Notes may
// change after creation; the owner is fixed for the lifetime of the row.
type EmotionLog struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	DetectedEmotion string    `json:"detectedEmotion"`
	Confidence      *float64  `json:"confidence,omitempty"`
	AudioFileURI    string    `json:"audioFileUri,omitempty"`
	Feedback        Feedback  `json:"feedback"`
	Notes           string    `json:"notes,omitempty"`
	ModelVersion    string    `json:"modelVersion,omitempty"`
	DeviceInfo      string    `json:"deviceInfo,omitempty"`
	InputLanguage   string    `json:"inputLanguage"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
