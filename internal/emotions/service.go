package emotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/ids"
)

// Service owns emotion-log records. Ownership and role checks are applied
// here, after the target row is loaded, so a denied caller can never
// mutate state.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("emotions: store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LogInput carries the fields a client may set when recording a detection
// event. Zero values fall back to the documented defaults.
type LogInput struct {
	DetectedEmotion string
	Confidence      *float64
	AudioFileURI    string
	Feedback        Feedback
	Notes           string
	ModelVersion    string
	DeviceInfo      string
	InputLanguage   string
}

// Log records a detection event. A nil identity is permitted when the
// transport has already authorized the caller through the device API key;
// such logs are owned by the anonymous sentinel and stay readable by
// admins only.
func (s *Service) Log(ctx context.Context, identity *auth.Identity, in LogInput) (*EmotionLog, error) {
	in.DetectedEmotion = strings.TrimSpace(in.DetectedEmotion)
	if in.DetectedEmotion == "" {
		return nil, fmt.Errorf("%w: detectedEmotion is required", ErrInvalidInput)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidInput)
	}
	if in.Feedback == "" {
		in.Feedback = FeedbackNotProvided
	}
	if !in.Feedback.Valid() {
		return nil, fmt.Errorf("%w: invalid feedback value %q", ErrInvalidInput, in.Feedback)
	}
	if len(in.Notes) > MaxNotesLength {
		return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, MaxNotesLength)
	}
	if in.InputLanguage == "" {
		in.InputLanguage = DefaultInputLanguage
	}

	owner := AnonymousUserID
	if identity != nil && identity.UserID != "" {
		owner = identity.UserID
	}

	now := s.now().UTC()
	log := &EmotionLog{
		ID:              ids.New(),
		UserID:          owner,
		DetectedEmotion: in.DetectedEmotion,
		Confidence:      in.Confidence,
		AudioFileURI:    strings.TrimSpace(in.AudioFileURI),
		Feedback:        in.Feedback,
		Notes:           in.Notes,
		ModelVersion:    strings.TrimSpace(in.ModelVersion),
		DeviceInfo:      strings.TrimSpace(in.DeviceInfo),
		InputLanguage:   in.InputLanguage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// List returns one page of logs plus the total row count. Non-admin
// callers always see only their own rows; an admin may narrow the listing
// to an arbitrary owner via ownerID, or pass "" for all rows.
func (s *Service) List(ctx context.Context, identity *auth.Identity, ownerID string, page, limit int) ([]*EmotionLog, int, error) {
	if err := auth.RequireAuthenticated(identity); err != nil {
		return nil, 0, err
	}
	if page < 1 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: page and limit must be positive", ErrInvalidInput)
	}

	filter := ListFilter{UserID: ownerID}
	if identity.Role != auth.RoleAdmin {
		filter.UserID = identity.UserID
	}
	return s.store.List(ctx, filter, (page-1)*limit, limit)
}

// Get returns a single log, visible to its owner or an admin.
func (s *Service) Get(ctx context.Context, identity *auth.Identity, id string) (*EmotionLog, error) {
	if err := auth.RequireAuthenticated(identity); err != nil {
		return nil, err
	}
	log, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrRole(*identity, log.UserID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return log, nil
}

// FeedbackUpdate carries the mutable fields of a log; nil fields stay
// untouched.
type FeedbackUpdate struct {
	Feedback *Feedback
	Notes    *string
}

// UpdateFeedback changes the feedback classification and/or notes of a
// log. Only the owner or an admin may do so; all other fields are fixed
// at creation.
func (s *Service) UpdateFeedback(ctx context.Context, identity *auth.Identity, id string, upd FeedbackUpdate) (*EmotionLog, error) {
	if err := auth.RequireAuthenticated(identity); err != nil {
		return nil, err
	}
	log, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrRole(*identity, log.UserID, auth.RoleAdmin); err != nil {
		return nil, err
	}

	if upd.Feedback != nil {
		if !upd.Feedback.Valid() {
			return nil, fmt.Errorf("%w: invalid feedback value %q", ErrInvalidInput, *upd.Feedback)
		}
		log.Feedback = *upd.Feedback
	}
	if upd.Notes != nil {
		if len(*upd.Notes) > MaxNotesLength {
			return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, MaxNotesLength)
		}
		log.Notes = *upd.Notes
	}

	log.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *Service) find(ctx context.Context, id string) (*EmotionLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: log id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}
