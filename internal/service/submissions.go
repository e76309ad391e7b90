package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/providers/thanks"
)

const defaultNotifyTimeout = 15 * time.Second

type Options struct {
	// Store may be nil when no database is configured.
	Store         domain.SubmissionStore
	Notifier      thanks.Notifier
	Logger        infra.Logger
	Metrics       *metrics.Metrics
	Clock         func() time.Time
	NotifyTimeout time.Duration
	Goal          int
}

// Submissions is the only writer of the submission store.
type Submissions struct {
	store    domain.SubmissionStore
	notifier thanks.Notifier
	logger   infra.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	timeout  time.Duration
	goal     int

	idMu   sync.Mutex
	lastID int64
}

func NewSubmissions(opts Options) *Submissions {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := opts.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = thanks.NewStaticNotifier()
	}
	return &Submissions{
		store:    opts.Store,
		notifier: notifier,
		logger:   opts.Logger.With().Str("component", "submissions").Logger(),
		metrics:  opts.Metrics,
		now:      clock,
		timeout:  timeout,
		goal:     opts.Goal,
	}
}

// HasStore reports whether a database is connected.
func (s *Submissions) HasStore() bool {
	return s.store != nil
}

// Create validates in, assigns an id and timestamp, and persists the record.
func (s *Submissions) Create(ctx context.Context, in domain.SubmissionInput) (domain.Submission, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Submission{}, err
	}
	if s.store == nil {
		return domain.Submission{}, domain.ErrStoreUnavailable
	}

	now := s.now()
	sub := domain.NewSubmission(s.nextID(now), in, now)
	if err := s.store.Insert(ctx, &sub); err != nil {
		s.logger.Error().Err(err).Int64("id", sub.ID).Msg("insert failed")
		return domain.Submission{}, err
	}
	s.metrics.SubmissionCreated(string(sub.Type))
	s.logger.Info().Int64("id", sub.ID).Str("type", string(sub.Type)).Int64("amount", sub.Amount).Msg("submission created")
	return sub, nil
}

// nextID returns now in unix milliseconds, bumped past the last issued id so
// ids stay strictly increasing within the process.
func (s *Submissions) nextID(now time.Time) int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// List returns every submission, newest first. Without a store it returns
// an empty list.
func (s *Submissions) List(ctx context.Context) ([]domain.Submission, error) {
	if s.store == nil {
		return []domain.Submission{}, nil
	}
	items, err := s.store.ListDescending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list failed")
		return nil, err
	}
	return items, nil
}

// Snapshot is the full list handed to the export sink.
func (s *Submissions) Snapshot(ctx context.Context) ([]domain.Submission, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.List(ctx)
}

// Moderate applies action to id and returns the refreshed list. An id that
// matches no row is a no-op.
func (s *Submissions) Moderate(ctx context.Context, action domain.ModerationAction, id int64) ([]domain.Submission, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	var (
		affected int64
		err      error
	)
	switch action {
	case domain.ActionDelete:
		affected, err = s.store.UpdateFlag(ctx, id, true)
	case domain.ActionRestore:
		affected, err = s.store.UpdateFlag(ctx, id, false)
	case domain.ActionPermanentDelete:
		affected, err = s.store.DeleteByID(ctx, id)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("action", string(action)).Int64("id", id).Msg("moderation failed")
		return nil, err
	}
	s.metrics.Moderated(string(action), affected > 0)
	if affected == 0 {
		s.logger.Warn().Str("action", string(action)).Int64("id", id).Msg("moderation matched no rows")
	} else {
		s.logger.Info().Str("action", string(action)).Int64("id", id).Msg("moderation applied")
	}
	return s.List(ctx)
}

// Notify generates the thank-you message on its own goroutine. The work is
// detached from ctx cancellation but bounded by the notify timeout. The
// returned channel yields exactly one result.
func (s *Submissions) Notify(ctx context.Context, sub domain.Submission, locale string) <-chan thanks.Result {
	out := make(chan thanks.Result, 1)
	go func() {
		defer close(out)
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		res := s.notifier.ThankYou(notifyCtx, thanks.Request{Submission: sub, Locale: locale})
		s.metrics.AIMessage(res.Provider, res.Fallback)
		if res.Fallback {
			s.logger.Warn().Int64("id", sub.ID).Str("provider", res.Provider).Str("reason", res.Reason).Msg("thank-you fell back")
		}
		out <- res
	}()
	return out
}

// Summary computes the public progress figures over active rows.
func (s *Submissions) Summary(ctx context.Context) (domain.Summary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(items, s.goal), nil
}

// Sponsors lists active donors with masked names.
func (s *Submissions) Sponsors(ctx context.Context) ([]domain.Sponsor, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Sponsors(items), nil
}

// Ping checks the store. Without a store there is nothing to check.
func (s *Submissions) Ping(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}
