package hint

import (
	"context"
	"fmt"

	"github.com/wricardo/robo-path/game/engine"
)

// RuleNarrator answers from a static table. It never fails and never
// spells out the solution.
type RuleNarrator struct {
	locale string
}

// NewRuleNarrator creates a rule narrator for locale ("en" or "id")
func NewRuleNarrator(locale string) *RuleNarrator {
	return &RuleNarrator{locale: NormalizeLocale(locale)}
}

// Locale returns the normalized locale
func (n *RuleNarrator) Locale() string {
	return n.locale
}

func (n *RuleNarrator) DescribeFailure(ctx context.Context, req FailureRequest) (string, error) {
	m := messagesFor(n.locale)

	switch req.Outcome.Kind {
	case engine.OutcomeFailedWall:
		return m.hintWall, nil
	case engine.OutcomeFailedBounds:
		return m.hintBounds, nil
	case engine.OutcomeInsufficientStars:
		return m.hintInsufficient, nil
	case engine.OutcomeIncomplete:
		if req.Level != nil {
			if d := engine.ManhattanDistance(req.FinalPos, req.Level.GoalPos); d > 0 {
				return m.hintDefault + " " + fmt.Sprintf(m.hintDistance, d), nil
			}
		}
	}
	return m.hintDefault, nil
}

func (n *RuleNarrator) DescribeWin(ctx context.Context, starsCollected int) (string, error) {
	return winMessage(messagesFor(n.locale), starsCollected), nil
}
