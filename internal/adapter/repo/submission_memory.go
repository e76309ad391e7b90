package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

// SubmissionRepositoryMemory keeps submissions in process memory. Data is
// lost on restart.
type SubmissionRepositoryMemory struct {
	mu   sync.RWMutex
	rows map[int64]domain.Submission
}

func NewSubmissionRepositoryMemory() *SubmissionRepositoryMemory {
	return &SubmissionRepositoryMemory{rows: make(map[int64]domain.Submission)}
}

func (r *SubmissionRepositoryMemory) Insert(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[s.ID]; exists {
		return fmt.Errorf("insert submission: duplicate id %d", s.ID)
	}
	row := *s
	row.IsDeleted = false
	r.rows[s.ID] = row
	return nil
}

func (r *SubmissionRepositoryMemory) ListDescending(_ context.Context) ([]domain.Submission, error) {
	r.mu.RLock()
	items := make([]domain.Submission, 0, len(r.rows))
	for _, s := range r.rows {
		items = append(items, s)
	}
	r.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (r *SubmissionRepositoryMemory) UpdateFlag(_ context.Context, id int64, deleted bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return 0, nil
	}
	s.IsDeleted = deleted
	r.rows[id] = s
	return 1, nil
}

func (r *SubmissionRepositoryMemory) DeleteByID(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *SubmissionRepositoryMemory) Ping(context.Context) error { return nil }

func (r *SubmissionRepositoryMemory) Close() error { return nil }

var _ domain.SubmissionStore = (*SubmissionRepositoryMemory)(nil)
