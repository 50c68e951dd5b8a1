package matches

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

// Create inserts a new match job.
func (r *PGRepo) Create(ctx context.Context, job MatchJob) error {
	const query = `
INSERT INTO job_matches (id, resume_id, status, job_description, match_result, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	jobDescription, err := marshalJSONB(job.JobDescription)
	if err != nil {
		return err
	}
	result, err := marshalJSONB(job.MatchResult)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.ResumeID,
		job.Status,
		jobDescription,
		result,
		job.CreatedAt,
		nullTime(job.CompletedAt),
	)
	return err
}

// GetByID returns a match job by ID.
func (r *PGRepo) GetByID(ctx context.Context, matchID string) (MatchJob, error) {
	const query = `
SELECT id, resume_id, status, job_description, match_result, created_at, completed_at
FROM job_matches
WHERE id = $1
LIMIT 1`
	var job MatchJob
	var jobDescription sql.NullString
	var result sql.NullString
	var completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, matchID).Scan(
		&job.ID,
		&job.ResumeID,
		&job.Status,
		&jobDescription,
		&result,
		&job.CreatedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchJob{}, ErrNotFound
	}
	if err != nil {
		return MatchJob{}, err
	}
	if job.JobDescription, err = unmarshalJSONB(jobDescription); err != nil {
		return MatchJob{}, err
	}
	if job.MatchResult, err = unmarshalJSONB(result); err != nil {
		return MatchJob{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

// UpdateResult records the terminal status and the result payload.
func (r *PGRepo) UpdateResult(ctx context.Context, matchID, status string, result map[string]any, completedAt time.Time) error {
	const query = `
UPDATE job_matches SET status = $2, match_result = $3, completed_at = $4 WHERE id = $1`
	payload, err := marshalJSONB(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, matchID, status, payload, completedAt)
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

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
