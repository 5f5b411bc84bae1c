// Package hint produces the text shown after a run: a headline for the
// outcome and an encouraging hint (on failure) or celebration (on win).
//
// RuleNarrator answers from static English and Indonesian tables.
// RemoteNarrator asks a text-generation endpoint. WithFallback combines
// them so narration can never block or fail a run.
package hint
