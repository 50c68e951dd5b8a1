package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
	id, file_name, file_size, file_type, storage_key, status, raw_text,
	structured_data, ai_enhancements, created_at, completed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	structured, err := marshalJSONB(resume.StructuredData)
	if err != nil {
		return err
	}
	enhancements, err := marshalJSONB(resume.AIEnhancements)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.FileName,
		resume.FileSize,
		resume.FileType,
		resume.StorageKey,
		resume.Status,
		nullString(resume.RawText),
		structured,
		enhancements,
		resume.CreatedAt,
		nullTime(resume.CompletedAt),
	)
	return err
}

// GetByID returns a resume by ID.
func (r *PGRepo) GetByID(ctx context.Context, resumeID string) (Resume, error) {
	const query = `
SELECT id, file_name, file_size, file_type, storage_key, status, raw_text,
       structured_data, ai_enhancements, created_at, completed_at
FROM resumes
WHERE id = $1
LIMIT 1`
	var resume Resume
	var rawText sql.NullString
	var structured sql.NullString
	var enhancements sql.NullString
	var completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, resumeID).Scan(
		&resume.ID,
		&resume.FileName,
		&resume.FileSize,
		&resume.FileType,
		&resume.StorageKey,
		&resume.Status,
		&rawText,
		&structured,
		&enhancements,
		&resume.CreatedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	resume.RawText = rawText.String
	if resume.StructuredData, err = unmarshalJSONB(structured); err != nil {
		return Resume{}, err
	}
	if resume.AIEnhancements, err = unmarshalJSONB(enhancements); err != nil {
		return Resume{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		resume.CompletedAt = &t
	}
	return resume, nil
}

// UpdateStatus transitions a resume's status.
func (r *PGRepo) UpdateStatus(ctx context.Context, resumeID, status string) error {
	const query = `UPDATE resumes SET status = $2 WHERE id = $1`
	return r.execOne(ctx, query, resumeID, status)
}

// UpdateTextAndStatus records extracted text alongside a status change.
func (r *PGRepo) UpdateTextAndStatus(ctx context.Context, resumeID, rawText, status string) error {
	const query = `UPDATE resumes SET raw_text = $2, status = $3 WHERE id = $1`
	return r.execOne(ctx, query, resumeID, rawText, status)
}

// UpdateEnrichment stores pipeline output and terminal status atomically.
func (r *PGRepo) UpdateEnrichment(ctx context.Context, resumeID string, structured, enhancements map[string]any, status string, completedAt time.Time) error {
	const query = `
UPDATE resumes
SET structured_data = $2, ai_enhancements = $3, status = $4, completed_at = $5
WHERE id = $1`
	structuredPayload, err := marshalJSONB(structured)
	if err != nil {
		return err
	}
	enhancementsPayload, err := marshalJSONB(enhancements)
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, resumeID, structuredPayload, enhancementsPayload, status, completedAt)
}

// UpdateStructuredData overwrites structured data after a manual edit,
// forcing a terminal status with its completion timestamp.
func (r *PGRepo) UpdateStructuredData(ctx context.Context, resumeID string, structured map[string]any, status string, completedAt time.Time) error {
	const query = `UPDATE resumes SET structured_data = $2, status = $3, completed_at = $4 WHERE id = $1`
	payload, err := marshalJSONB(structured)
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, resumeID, payload, status, completedAt)
}

// MarkFailed records a terminal failure status and its timestamp.
func (r *PGRepo) MarkFailed(ctx context.Context, resumeID, status string, completedAt time.Time) error {
	const query = `UPDATE resumes SET status = $2, completed_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, resumeID, status, completedAt)
}

// Delete removes a resume. Dependent match jobs cascade in the schema.
func (r *PGRepo) Delete(ctx context.Context, resumeID string) error {
	const query = `DELETE FROM resumes WHERE id = $1`
	return r.execOne(ctx, query, resumeID)
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
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

func marshalJSONB(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func unmarshalJSONB(raw sql.NullString) (map[string]any, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
