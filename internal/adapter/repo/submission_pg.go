package repo

import (
	"context"
	"fmt"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/sqlinline"
)

// SubmissionRepositoryPG implements domain.SubmissionStore using PostgreSQL.
type SubmissionRepositoryPG struct {
	sql   infra.SQLExecutor
	close func()
}

// NewSubmissionRepositoryPG wraps an executor. closeFn releases the pool on Close.
func NewSubmissionRepositoryPG(sql infra.SQLExecutor, closeFn func()) *SubmissionRepositoryPG {
	return &SubmissionRepositoryPG{sql: sql, close: closeFn}
}

// Insert stores a new submission with is_deleted = false.
func (r *SubmissionRepositoryPG) Insert(ctx context.Context, s *domain.Submission) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertSubmission,
		s.ID, s.Name, s.Phone, s.Target, s.Amount, s.Message, string(s.Type), s.Date)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListDescending returns every submission, newest first.
func (r *SubmissionRepositoryPG) ListDescending(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListSubmissions)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	items := []domain.Submission{}
	for rows.Next() {
		var s domain.Submission
		var typ string
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Target, &s.Amount, &s.Message, &typ, &s.Date, &s.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.Type = domain.SubmissionType(typ)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return items, nil
}

// UpdateFlag sets is_deleted for id and returns the affected row count.
func (r *SubmissionRepositoryPG) UpdateFlag(ctx context.Context, id int64, deleted bool) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateSubmissionDeleted, id, deleted)
	if err != nil {
		return 0, fmt.Errorf("update submission flag: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByID removes the row for id and returns the affected row count.
func (r *SubmissionRepositoryPG) DeleteByID(ctx context.Context, id int64) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteSubmission, id)
	if err != nil {
		return 0, fmt.Errorf("delete submission: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the connection with a trivial query.
func (r *SubmissionRepositoryPG) Ping(ctx context.Context) error {
	var one int
	if err := r.sql.QueryRow(ctx, sqlinline.QPing).Scan(&one); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (r *SubmissionRepositoryPG) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

var _ domain.SubmissionStore = (*SubmissionRepositoryPG)(nil)
