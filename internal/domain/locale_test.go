package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{name: "empty defaults to korean", want: "ko"},
		{name: "exact english", prefs: []string{"en"}, want: "en"},
		{name: "regional mongolian", prefs: []string{"mn-MN"}, want: "mn"},
		{name: "accept-language header", prefs: []string{"ja-JP,en;q=0.8"}, want: "ja"},
		{name: "chinese region", prefs: []string{"zh-CN"}, want: "zh"},
		{name: "unsupported falls back", prefs: []string{"fr-FR"}, want: "ko"},
		{name: "first usable preference wins", prefs: []string{"", "en-US"}, want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLocale(tt.prefs...))
		})
	}
}
