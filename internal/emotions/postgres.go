package emotions

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const logColumns = `id, user_id, detected_emotion, confidence, audio_file_uri,
		feedback, notes, model_version, device_info, input_language, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, log *EmotionLog) error {
	_, err := s.db.ExecContext(ctx, `
		insert into emotion_logs (`+logColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, log.ID, log.UserID, log.DetectedEmotion, log.Confidence, nullable(log.AudioFileURI),
		log.Feedback, nullable(log.Notes), nullable(log.ModelVersion), nullable(log.DeviceInfo),
		log.InputLanguage, log.CreatedAt, log.UpdatedAt)
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*EmotionLog, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select `+logColumns+`
		from emotion_logs where id = $1
	`, id))
}

func (s *PGStore) Update(ctx context.Context, log *EmotionLog) error {
	res, err := s.db.ExecContext(ctx, `
		update emotion_logs
		set feedback = $2, notes = $3, updated_at = $4
		where id = $1
	`, log.ID, log.Feedback, nullable(log.Notes), log.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, filter ListFilter, offset, limit int) ([]*EmotionLog, int, error) {
	countQuery := `select count(*) from emotion_logs`
	countArgs := []any{}
	if filter.UserID != "" {
		countQuery += ` where user_id = $1`
		countArgs = append(countArgs, filter.UserID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := []any{offset, limit}
	query := `
		select ` + logColumns + `
		from emotion_logs`
	if filter.UserID != "" {
		query += ` where user_id = $3`
		listArgs = append(listArgs, filter.UserID)
	}
	query += `
		order by created_at desc, id desc
		offset $1 limit $2`

	rows, err := s.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*EmotionLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, log)
	}
	return result, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PGStore) scanOne(row *sql.Row) (*EmotionLog, error) {
	log, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return log, nil
}

func scanLog(row rowScanner) (*EmotionLog, error) {
	var (
		log          EmotionLog
		audioFileURI sql.NullString
		notes        sql.NullString
		modelVersion sql.NullString
		deviceInfo   sql.NullString
	)
	err := row.Scan(&log.ID, &log.UserID, &log.DetectedEmotion, &log.Confidence, &audioFileURI,
		&log.Feedback, &notes, &modelVersion, &deviceInfo, &log.InputLanguage, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return nil, err
	}
	log.AudioFileURI = audioFileURI.String
	log.Notes = notes.String
	log.ModelVersion = modelVersion.String
	log.DeviceInfo = deviceInfo.String
	return &log, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
