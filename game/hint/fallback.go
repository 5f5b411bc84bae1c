package hint

import (
	"context"

	"github.com/charmbracelet/log"
)

// Fallback wraps a Narrator so that callers always get text. Any error,
// timeout or missing narrator yields the rule table answer.
type Fallback struct {
	primary Narrator
	rules   *RuleNarrator
	logger  *log.Logger
}

// WithFallback wraps primary, which may be nil
func WithFallback(primary Narrator, locale string, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{
		primary: primary,
		rules:   NewRuleNarrator(locale),
		logger:  logger,
	}
}

// DescribeFailure never returns an error
func (f *Fallback) DescribeFailure(ctx context.Context, req FailureRequest) (string, error) {
	if f.primary != nil {
		text, err := f.primary.DescribeFailure(ctx, req)
		if err == nil && text != "" {
			return text, nil
		}
		f.logger.Warn("narration failed, using rule hint", "kind", req.Outcome.Kind, "err", err)
	}
	return f.rules.DescribeFailure(ctx, req)
}

// DescribeWin never returns an error
func (f *Fallback) DescribeWin(ctx context.Context, starsCollected int) (string, error) {
	if f.primary != nil {
		text, err := f.primary.DescribeWin(ctx, starsCollected)
		if err == nil && text != "" {
			return text, nil
		}
		f.logger.Warn("win narration failed, using rule message", "stars", starsCollected, "err", err)
	}
	return f.rules.DescribeWin(ctx, starsCollected)
}
