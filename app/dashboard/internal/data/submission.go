package data

import (
	"context"
	"database/sql"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/goccy/go-json"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

type submissionRepo struct {
	data *Data
	log  *log.Helper
}

func NewSubmissionRepo(data *Data, logger log.Logger) repo.SubmissionRepo {
	return &submissionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func errSubmissionNotFound() error {
	return kerrors.NotFound("SUBMISSION_NOT_FOUND", "submission not found")
}

func (r *submissionRepo) ListSubmissions(ctx context.Context, userID string) ([]*domain.Submission, error) {
	rows, err := r.data.db.QueryContext(ctx, r.data.rebind(
		`SELECT payload, created_at, updated_at FROM submissions WHERE user_id = ? ORDER BY created_at ASC, submission_id ASC`),
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Submission, 0)
	for rows.Next() {
		var payload, createdAt, updatedAt string
		if err := rows.Scan(&payload, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s, err := decodeSubmission(payload, createdAt, updatedAt)
		if err != nil {
			r.log.Warnf("skipping corrupt submission for user %s: %v", userID, err)
			continue
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *submissionRepo) GetSubmission(ctx context.Context, userID, submissionID string) (*domain.Submission, error) {
	return getSubmission(ctx, r.data, r.data.db, userID, submissionID)
}

func (r *submissionRepo) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	now := r.data.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.data.db.ExecContext(ctx, r.data.rebind(
		`INSERT INTO submissions (user_id, submission_id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		s.UserID, s.SubmissionID, string(payload), formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	return err
}

func (r *submissionRepo) UpdateAppetite(ctx context.Context, userID, submissionID string, u domain.AppetiteUpdate) (*domain.Submission, error) {
	tx, err := r.data.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	s, err := getSubmission(ctx, r.data, tx, userID, submissionID)
	if err != nil {
		return nil, err
	}
	s.AppetiteScore = u.AppetiteScore
	s.AppetiteStatus = u.AppetiteStatus
	if u.Status != "" {
		s.Status = u.Status
	}
	s.UpdatedAt = r.data.now()

	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, r.data.rebind(
		`UPDATE submissions SET payload = ?, updated_at = ? WHERE user_id = ? AND submission_id = ?`),
		string(payload), formatTime(s.UpdatedAt), userID, submissionID)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res, errSubmissionNotFound()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSubmission(ctx context.Context, d *Data, q queryRower, userID, submissionID string) (*domain.Submission, error) {
	row := q.QueryRowContext(ctx, d.rebind(
		`SELECT payload, created_at, updated_at FROM submissions WHERE user_id = ? AND submission_id = ?`),
		userID, submissionID)

	var payload, createdAt, updatedAt string
	if err := row.Scan(&payload, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errSubmissionNotFound()
		}
		return nil, err
	}
	return decodeSubmission(payload, createdAt, updatedAt)
}

func decodeSubmission(payload, createdAt, updatedAt string) (*domain.Submission, error) {
	var s domain.Submission
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	if s.WhySurfaced == nil {
		s.WhySurfaced = []string{}
	}
	if s.MissingInfo == nil {
		s.MissingInfo = []string{}
	}
	return &s, nil
}
