package hint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/robo-path/game/engine"
)

// Supported locales
const (
	LocaleEnglish    = "en"
	LocaleIndonesian = "id"
)

var ErrEmptyText = errors.New("narrator returned empty text")

// FailureRequest describes a lost run for narration
type FailureRequest struct {
	Level    *engine.Level
	Commands []engine.Command
	Outcome  engine.Outcome
	FinalPos engine.Position
}

// Narrator turns outcomes into short encouraging text for the player
type Narrator interface {
	DescribeFailure(ctx context.Context, req FailureRequest) (string, error)
	DescribeWin(ctx context.Context, starsCollected int) (string, error)
}

// messages holds the static text of one locale
type messages struct {
	bounds       string
	wall         string
	insufficient string // needed, collected
	incomplete   string

	hintBounds       string
	hintWall         string
	hintInsufficient string
	hintDefault      string
	hintDistance     string // steps to the goal

	winThreeStars string
	winSomeStars  string
	winNoStars    string
}

var catalog = map[string]messages{
	LocaleEnglish: {
		bounds:       "Oops! Robo bumped into the edge of the world!",
		wall:         "Bonk! A big rock is blocking the way.",
		insufficient: "Almost! You need %d stars but only have %d.",
		incomplete:   "Robo has not reached home yet.",

		hintBounds:       "Careful, don't leave the path!",
		hintWall:         "Watch out for the rock! Try finding a way around it.",
		hintInsufficient: "Find a path that passes the stars!",
		hintDefault:      "Don't give up! Check your arrows again.",
		hintDistance:     "Robo is %d steps away from home.",

		winThreeStars: "Amazing! 3 Stars! 🌟🌟🌟",
		winSomeStars:  "Great job! You did it! 🎉",
		winNoStars:    "Hooray! You won! 🎈",
	},
	LocaleIndonesian: {
		bounds:       "Aduh! Robo menabrak batas dunia!",
		wall:         "Dug! Ada batu besar menghalangi jalan.",
		insufficient: "Yah! Kamu butuh %d bintang, tapi baru punya %d.",
		incomplete:   "Robot belum sampai di rumah.",

		hintBounds:       "Hati-hati, jangan sampai keluar jalur!",
		hintWall:         "Awas ada batu! Coba cari jalan memutar ya.",
		hintInsufficient: "Cari jalan yang melewati bintang ya!",
		hintDefault:      "Jangan menyerah! Coba cek lagi arah panahmu.",
		hintDistance:     "Robo tinggal %d langkah lagi dari rumah.",

		winThreeStars: "Luar biasa! 3 Bintang! 🌟🌟🌟",
		winSomeStars:  "Hebat! Kamu berhasil! 🎉",
		winNoStars:    "Hore! Kamu menang! 🎈",
	},
}

// NormalizeLocale maps a locale tag such as "id-ID" onto a supported
// locale, defaulting to English
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if _, ok := catalog[locale]; ok {
		return locale
	}
	return LocaleEnglish
}

func messagesFor(locale string) messages {
	return catalog[NormalizeLocale(locale)]
}

// Headline returns the short message shown when a run ends. It is
// independent of the hint.
func Headline(outcome engine.Outcome, locale string) string {
	m := messagesFor(locale)

	switch outcome.Kind {
	case engine.OutcomeWon:
		return winMessage(m, outcome.StarsCollected)
	case engine.OutcomeFailedBounds:
		return m.bounds
	case engine.OutcomeFailedWall:
		return m.wall
	case engine.OutcomeInsufficientStars:
		return fmt.Sprintf(m.insufficient, outcome.StarsRequired, outcome.StarsCollected)
	default:
		return m.incomplete
	}
}

func winMessage(m messages, stars int) string {
	switch {
	case stars >= 3:
		return m.winThreeStars
	case stars > 0:
		return m.winSomeStars
	default:
		return m.winNoStars
	}
}
