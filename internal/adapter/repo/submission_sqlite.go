package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/sqlinline"
)

// SubmissionRepositorySQLite implements domain.SubmissionStore on the
// embedded SQLite engine.
type SubmissionRepositorySQLite struct {
	db  infra.DBTX
	raw *sql.DB
}

// NewSubmissionRepositorySQLite binds the store to a marker-checking runner
// over raw. raw is used for Ping and Close.
func NewSubmissionRepositorySQLite(raw *sql.DB, logger infra.Logger) *SubmissionRepositorySQLite {
	return &SubmissionRepositorySQLite{db: infra.NewSQLDBRunner(raw, logger), raw: raw}
}

func (r *SubmissionRepositorySQLite) Insert(ctx context.Context, s *domain.Submission) error {
	_, err := r.db.ExecContext(ctx, sqlinline.QInsertSubmissionSQLite,
		s.ID, s.Name, s.Phone, s.Target, s.Amount, s.Message, string(s.Type), s.Date)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepositorySQLite) ListDescending(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, sqlinline.QListSubmissionsSQLite)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	items := []domain.Submission{}
	for rows.Next() {
		var s domain.Submission
		var typ string
		var deleted int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Target, &s.Amount, &s.Message, &typ, &s.Date, &deleted); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.Type = domain.SubmissionType(typ)
		s.IsDeleted = deleted != 0
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return items, nil
}

func (r *SubmissionRepositorySQLite) UpdateFlag(ctx context.Context, id int64, deleted bool) (int64, error) {
	flag := 0
	if deleted {
		flag = 1
	}
	res, err := r.db.ExecContext(ctx, sqlinline.QUpdateSubmissionDeletedSQLite, flag, id)
	if err != nil {
		return 0, fmt.Errorf("update submission flag: %w", err)
	}
	return rowsAffected(res)
}

func (r *SubmissionRepositorySQLite) DeleteByID(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, sqlinline.QDeleteSubmissionSQLite, id)
	if err != nil {
		return 0, fmt.Errorf("delete submission: %w", err)
	}
	return rowsAffected(res)
}

func (r *SubmissionRepositorySQLite) Ping(ctx context.Context) error {
	if err := r.raw.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

func (r *SubmissionRepositorySQLite) Close() error {
	return r.raw.Close()
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

var _ domain.SubmissionStore = (*SubmissionRepositorySQLite)(nil)
