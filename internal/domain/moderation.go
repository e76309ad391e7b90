package domain

import "strings"

// ModerationAction enumerates admin operations on a submission.
type ModerationAction string

const (
	ActionDelete          ModerationAction = "delete"
	ActionRestore         ModerationAction = "restore"
	ActionPermanentDelete ModerationAction = "permanent_delete"
)

// Valid reports whether a is a known moderation action.
func (a ModerationAction) Valid() bool {
	switch a {
	case ActionDelete, ActionRestore, ActionPermanentDelete:
		return true
	}
	return false
}

// View names a partition of the moderation table.
type View string

const (
	ViewAll        View = "all"
	ViewActive     View = "active"
	ViewCommitment View = "commitment"
	ViewOneTime    View = "one-time"
	ViewTrash      View = "trash"
)

// ParseView maps a query value to a View, defaulting to ViewAll.
func ParseView(raw string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(raw))); v {
	case "", ViewAll:
		return ViewAll, true
	case ViewActive, ViewCommitment, ViewOneTime, ViewTrash:
		return v, true
	}
	return ViewAll, false
}

// Filter returns the submissions belonging to view, preserving order.
func Filter(list []Submission, view View) []Submission {
	out := make([]Submission, 0, len(list))
	for _, s := range list {
		if matchesView(s, view) {
			out = append(out, s)
		}
	}
	return out
}

func matchesView(s Submission, view View) bool {
	switch view {
	case ViewActive:
		return !s.IsDeleted
	case ViewCommitment:
		return !s.IsDeleted && s.Type == SubmissionCommitment
	case ViewOneTime:
		return !s.IsDeleted && s.Type == SubmissionOneTime
	case ViewTrash:
		return s.IsDeleted
	default:
		return true
	}
}

// Summary aggregates the public progress figures. Deleted rows never count.
type Summary struct {
	Sponsors    int   `json:"sponsors"`
	TotalAmount int64 `json:"totalAmount"`
	Goal        int   `json:"goal"`
	Commitments int   `json:"commitments"`
	OneTime     int   `json:"oneTime"`
	Trash       int   `json:"trash"`
}

// Summarize computes the public summary for list.
func Summarize(list []Submission, goal int) Summary {
	sum := Summary{Goal: goal}
	for _, s := range list {
		if s.IsDeleted {
			sum.Trash++
			continue
		}
		sum.Sponsors++
		sum.TotalAmount += s.Amount
		if s.Type == SubmissionCommitment {
			sum.Commitments++
		} else {
			sum.OneTime++
		}
	}
	return sum
}

// Sponsor is the public, masked view of an active submission.
type Sponsor struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Date   string `json:"date"`
	ID     int64  `json:"id"`
}

// Sponsors projects the active submissions into masked sponsor entries.
func Sponsors(list []Submission) []Sponsor {
	out := make([]Sponsor, 0, len(list))
	for _, s := range list {
		if s.IsDeleted {
			continue
		}
		out = append(out, Sponsor{
			Name:   MaskName(s.Name),
			Amount: s.Amount,
			Date:   s.DateOnly(),
			ID:     s.ID,
		})
	}
	return out
}

// MaskName hides the middle rune of a donor name. Two-rune names keep only
// the first rune.
func MaskName(name string) string {
	runes := []rune(name)
	switch n := len(runes); {
	case n <= 1:
		return name
	case n == 2:
		return string(runes[0]) + "*"
	default:
		mid := n / 2
		return string(runes[:mid]) + "*" + string(runes[mid+1:])
	}
}
