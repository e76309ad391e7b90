package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionInputValidate(t *testing.T) {
	base := SubmissionInput{Name: "홍길동", Phone: "010-0000-0000", Target: "A", Type: SubmissionOneTime}

	tests := []struct {
		name    string
		mutate  func(in *SubmissionInput)
		wantErr string
	}{
		{name: "one-time at floor", mutate: func(in *SubmissionInput) { in.Amount = 50000 }},
		{name: "one-time below floor", mutate: func(in *SubmissionInput) { in.Amount = 49999 }, wantErr: "amount"},
		{name: "commitment default", mutate: func(in *SubmissionInput) { in.Type = SubmissionCommitment }},
		{name: "commitment negative", mutate: func(in *SubmissionInput) { in.Type = SubmissionCommitment; in.Amount = -1 }, wantErr: "amount"},
		{name: "missing name", mutate: func(in *SubmissionInput) { in.Name = "  "; in.Amount = 60000 }, wantErr: "name"},
		{name: "missing phone", mutate: func(in *SubmissionInput) { in.Phone = ""; in.Amount = 60000 }, wantErr: "phone"},
		{name: "missing target", mutate: func(in *SubmissionInput) { in.Target = ""; in.Amount = 60000 }, wantErr: "target"},
		{name: "unknown type", mutate: func(in *SubmissionInput) { in.Type = "monthly"; in.Amount = 60000 }, wantErr: "type"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			err := in.Normalize().Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.wantErr)
		})
	}
}

func TestNormalizeAppliesCommitmentDefault(t *testing.T) {
	in := SubmissionInput{Name: " 홍길동 ", Phone: "1", Target: "A", Type: SubmissionCommitment}.Normalize()
	assert.Equal(t, MinimumAmount, in.Amount)
	assert.Equal(t, "홍길동", in.Name)

	kept := SubmissionInput{Type: SubmissionCommitment, Amount: 70000}.Normalize()
	assert.Equal(t, int64(70000), kept.Amount)
}

func TestNewSubmissionStampsDate(t *testing.T) {
	now := time.Date(2026, 2, 23, 9, 30, 0, 123_000_000, time.UTC)
	s := NewSubmission(now.UnixMilli(), SubmissionInput{Name: "a", Type: SubmissionOneTime, Amount: 50000}, now)
	assert.Equal(t, "2026-02-23T09:30:00.123Z", s.Date)
	assert.Equal(t, "2026-02-23", s.DateOnly())
	assert.False(t, s.IsDeleted)
	assert.Equal(t, now.UnixMilli(), s.ID)
}

func TestMaskName(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"김":      "김",
		"이유":     "이*",
		"홍길동":    "홍*동",
		"이다예린":   "이다*린",
		"Bataar": "Bat*ar",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskName(in), "MaskName(%q)", in)
	}
}

func TestFilterAndSummarize(t *testing.T) {
	list := []Submission{
		{ID: 3, Name: "c", Amount: 50000, Type: SubmissionCommitment},
		{ID: 2, Name: "b", Amount: 70000, Type: SubmissionOneTime, IsDeleted: true},
		{ID: 1, Name: "a", Amount: 80000, Type: SubmissionOneTime, Date: "2026-02-01T00:00:00.000Z"},
	}

	assert.Len(t, Filter(list, ViewAll), 3)
	assert.Len(t, Filter(list, ViewActive), 2)
	assert.Equal(t, []Submission{list[1]}, Filter(list, ViewTrash))
	assert.Equal(t, []Submission{list[0]}, Filter(list, ViewCommitment))
	assert.Equal(t, []Submission{list[2]}, Filter(list, ViewOneTime))

	sum := Summarize(list, 60)
	assert.Equal(t, Summary{Sponsors: 2, TotalAmount: 130000, Goal: 60, Commitments: 1, OneTime: 1, Trash: 1}, sum)

	sponsors := Sponsors(list)
	require.Len(t, sponsors, 2)
	assert.Equal(t, int64(3), sponsors[0].ID)
	assert.Equal(t, "2026-02-01", sponsors[1].Date)
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("TRASH")
	assert.True(t, ok)
	assert.Equal(t, ViewTrash, v)

	v, ok = ParseView("")
	assert.True(t, ok)
	assert.Equal(t, ViewAll, v)

	_, ok = ParseView("bogus")
	assert.False(t, ok)
}
