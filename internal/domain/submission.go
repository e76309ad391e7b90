package domain

import (
	"strings"
	"time"
)

// SubmissionType enumerates the supported pledge kinds.
type SubmissionType string

const (
	SubmissionCommitment SubmissionType = "commitment"
	SubmissionOneTime    SubmissionType = "one-time"
)

// MinimumAmount is the floor for one-time gifts and the fixed default for
// commitments, in whole KRW.
const MinimumAmount int64 = 50000

// Valid reports whether t is a known submission type.
func (t SubmissionType) Valid() bool {
	return t == SubmissionCommitment || t == SubmissionOneTime
}

// Submission represents a donor pledge record.
type Submission struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone"`
	Target    string         `json:"target"`
	Amount    int64          `json:"amount"`
	Message   string         `json:"message"`
	Type      SubmissionType `json:"type"`
	Date      string         `json:"date"`
	IsDeleted bool           `json:"isDeleted"`
}

// DateOnly returns the calendar part of the stored ISO timestamp.
func (s Submission) DateOnly() string {
	if idx := strings.IndexByte(s.Date, 'T'); idx >= 0 {
		return s.Date[:idx]
	}
	return s.Date
}

// SubmissionInput carries donor supplied fields before validation.
type SubmissionInput struct {
	Name    string         `json:"name"`
	Phone   string         `json:"phone"`
	Target  string         `json:"target"`
	Amount  int64          `json:"amount"`
	Message string         `json:"message"`
	Type    SubmissionType `json:"type"`
}

// Normalize trims text fields and applies the commitment default amount.
func (in SubmissionInput) Normalize() SubmissionInput {
	out := SubmissionInput{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Target:  strings.TrimSpace(in.Target),
		Amount:  in.Amount,
		Message: strings.TrimSpace(in.Message),
		Type:    SubmissionType(strings.TrimSpace(string(in.Type))),
	}
	if out.Type == SubmissionCommitment && out.Amount == 0 {
		out.Amount = MinimumAmount
	}
	return out
}

// Validate checks presence and the amount floor. It expects a normalized input.
func (in SubmissionInput) Validate() error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Phone == "" {
		fields["phone"] = "required"
	}
	if in.Target == "" {
		fields["target"] = "required"
	}
	switch {
	case !in.Type.Valid():
		fields["type"] = "must be commitment or one-time"
	case in.Amount < 0:
		fields["amount"] = "must not be negative"
	case in.Type == SubmissionOneTime && in.Amount < MinimumAmount:
		fields["amount"] = "must be at least 50000"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewSubmission materializes a validated input into a record stamped at now.
func NewSubmission(id int64, in SubmissionInput, now time.Time) Submission {
	return Submission{
		ID:      id,
		Name:    in.Name,
		Phone:   in.Phone,
		Target:  in.Target,
		Amount:  in.Amount,
		Message: in.Message,
		Type:    in.Type,
		Date:    now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
