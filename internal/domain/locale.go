package domain

import (
	"golang.org/x/text/language"
)

// DefaultLocale is used when a request names no supported language.
const DefaultLocale = "ko"

var supportedLocales = []language.Tag{
	language.Korean,
	language.English,
	language.Mongolian,
	language.Japanese,
	language.Chinese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// MatchLocale picks the best supported locale for the given preferences.
// Each argument may be a single tag or an Accept-Language header value.
func MatchLocale(prefs ...string) string {
	tag, _ := language.MatchStrings(localeMatcher, prefs...)
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLocale
	}
	switch s := base.String(); s {
	case "ko", "en", "mn", "ja", "zh":
		return s
	}
	return DefaultLocale
}
