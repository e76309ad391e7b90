package handlers

import (
	"errors"
	"net/http"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
	"github.com/vip7612-maker/monglemongle/internal/realtime"
)

var (
	errNotObject    = errors.New("body must be a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
)

type submitResponse struct {
	Success    bool              `json:"success"`
	Submission domain.Submission `json:"submission"`
	AIMessage  string            `json:"aiMessage"`
	AIError    bool              `json:"aiError"`
}

// ListSubmissions serves the moderation table, optionally narrowed by ?view.
func (a *App) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	view, ok := domain.ParseView(r.URL.Query().Get("view"))
	if !ok {
		a.error(w, http.StatusBadRequest, "unknown view")
		return
	}
	list, err := a.Submissions.List(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("list submissions")
		a.json(w, http.StatusInternalServerError, []domain.Submission{})
		return
	}
	a.json(w, http.StatusOK, domain.Filter(list, view))
}

// Submit creates a submission, broadcasts it and waits for the thank-you
// message before answering.
func (a *App) Submit(w http.ResponseWriter, r *http.Request) {
	var in domain.SubmissionInput
	if err := decodeObject(w, r, &in); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sub, err := a.Submissions.Create(r.Context(), in)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			a.json(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   verr.Error(),
				"fields":  verr.Fields,
			})
		case errors.Is(err, domain.ErrStoreUnavailable):
			a.error(w, http.StatusServiceUnavailable, err.Error())
		default:
			a.log(r).Error().Err(err).Msg("create submission")
			a.error(w, http.StatusInternalServerError, "failed to save submission")
		}
		return
	}
	a.broadcast(realtime.EventNewSubmission, sub)

	resp := submitResponse{Success: true, Submission: sub}
	select {
	case res, ok := <-a.Submissions.Notify(r.Context(), sub, middleware.LocaleFromContext(r.Context())):
		if ok {
			resp.AIMessage = res.Message
			resp.AIError = res.Fallback
		}
	case <-r.Context().Done():
		return
	}
	a.json(w, http.StatusOK, resp)
}

type adminActionRequest struct {
	Type domain.ModerationAction `json:"type"`
	ID   int64                   `json:"id"`
}

// AdminAction applies a moderation action and returns the refreshed list.
func (a *App) AdminAction(w http.ResponseWriter, r *http.Request) {
	var req adminActionRequest
	if err := decodeObject(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ID <= 0 {
		a.error(w, http.StatusBadRequest, "id is required")
		return
	}
	list, err := a.Submissions.Moderate(r.Context(), req.Type, req.ID)
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		a.error(w, http.StatusBadRequest, "unknown action")
		return
	case errors.Is(err, domain.ErrStoreUnavailable):
		a.error(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		a.log(r).Error().Err(err).Str("action", string(req.Type)).Int64("id", req.ID).Msg("admin action")
		a.error(w, http.StatusInternalServerError, "admin action failed")
		return
	}
	a.broadcast(realtime.EventInit, list)
	a.json(w, http.StatusOK, list)
}

// Summary serves the public progress figures.
func (a *App) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := a.Submissions.Summary(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("summary")
		a.error(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	a.json(w, http.StatusOK, sum)
}

// Sponsors serves the masked public sponsor list.
func (a *App) Sponsors(w http.ResponseWriter, r *http.Request) {
	items, err := a.Submissions.Sponsors(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("sponsors")
		a.error(w, http.StatusInternalServerError, "failed to load sponsors")
		return
	}
	a.json(w, http.StatusOK, items)
}
