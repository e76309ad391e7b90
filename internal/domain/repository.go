package domain

import "context"

// SubmissionStore is the durable table of donation records.
// Implementations normalize the soft-delete flag to a bool on read.
type SubmissionStore interface {
	Insert(ctx context.Context, s *Submission) error
	ListDescending(ctx context.Context) ([]Submission, error)
	UpdateFlag(ctx context.Context, id int64, deleted bool) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
