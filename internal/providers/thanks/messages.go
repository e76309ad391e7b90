package thanks

import (
	"fmt"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

type catalog struct {
	language   string
	commitment string
	oneTime    string
	success    string
	failed     string
	absent     string
}

var catalogs = map[string]catalog{
	"ko": {
		language:   "Korean",
		commitment: "정기 후원 약정",
		oneTime:    "일시 후원",
		success:    "후원 약정에 진심으로 감사드립니다!",
		failed:     "몽골의 미래를 위한 따뜻한 후원에 감사드립니다!",
		absent:     "따뜻한 후원에 감사드립니다 (AI 키 없음)",
	},
	"en": {
		language:   "English",
		commitment: "recurring sponsorship commitment",
		oneTime:    "one-time donation",
		success:    "Thank you sincerely for your sponsorship pledge!",
		failed:     "Thank you for your warm support for the future of Mongolia!",
		absent:     "Thank you for your warm support (no AI key)",
	},
	"mn": {
		language:   "Mongolian",
		commitment: "тогтмол хандивын амлалт",
		oneTime:    "нэг удаагийн хандив",
		success:    "Хандив өргөхөө амласанд чин сэтгэлээсээ баярлалаа!",
		failed:     "Монголын ирээдүйн төлөөх халуун дулаан дэмжлэгт баярлалаа!",
		absent:     "Халуун дулаан дэмжлэгт баярлалаа (AI түлхүүргүй)",
	},
	"ja": {
		language:   "Japanese",
		commitment: "定期支援のお約束",
		oneTime:    "一回限りのご寄付",
		success:    "ご支援のお約束に心より感謝申し上げます！",
		failed:     "モンゴルの未来への温かいご支援に感謝いたします！",
		absent:     "温かいご支援に感謝いたします（AIキーなし）",
	},
	"zh": {
		language:   "Chinese",
		commitment: "定期捐助承诺",
		oneTime:    "一次性捐款",
		success:    "衷心感谢您的捐助承诺！",
		failed:     "感谢您为蒙古的未来送上温暖的支持！",
		absent:     "感谢您的温暖支持（无AI密钥）",
	},
}

func catalogFor(locale string) catalog {
	if c, ok := catalogs[domain.MatchLocale(locale)]; ok {
		return c
	}
	return catalogs[domain.DefaultLocale]
}

// BuildPrompt renders the provider prompt for a submission.
func BuildPrompt(s domain.Submission, locale string) string {
	c := catalogFor(locale)
	typeText := c.oneTime
	if s.Type == domain.SubmissionCommitment {
		typeText = c.commitment
	}
	return fmt.Sprintf(
		"Write a short, heartwarming thank you message in %s for a sponsor named %q who just committed to a %s to support %q in their mission to teach Google AI in Mongolia. Mention how this specific support for %s will help the mission. Keep it under 3 sentences.",
		c.language, s.Name, typeText, s.Target, s.Target,
	)
}

// FailedMessage is the text used when a configured provider could not answer.
func FailedMessage(locale string) string {
	return catalogFor(locale).failed
}

// AbsentMessage is the text used when no provider is configured.
func AbsentMessage(locale string) string {
	return catalogFor(locale).absent
}
