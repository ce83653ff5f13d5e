package tap

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrInvalidNumber    = errors.New("tap: invalid number")
	ErrInvalidResult    = errors.New("tap: result must be 'ok' or 'not ok'")
	ErrUnknownDirective = errors.New("tap: directive key must be 'skip' or 'todo'")
	ErrMissingPlan      = errors.New("tap: missing plan")
	ErrDuplicatePlan    = errors.New("tap: duplicate plan")
	ErrDuplicateBlock   = errors.New("tap: unexpected duplicate block")
	ErrMaxDepth         = errors.New("tap: subtest nesting too deep")
)

// GrammarError reports input that matches no production.
type GrammarError struct {
	Line    int
	Snippet string
	Message string
	Err     error
}

func (e *GrammarError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("grammar error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("grammar error at line %d: %s (near %q)", e.Line, e.Message, e.Snippet)
}

func (e *GrammarError) Unwrap() error { return e.Err }

// SemanticError reports a well-formed construct with invalid content.
// Construct names the production, Field and Text the offending part when
// there is one.
type SemanticError struct {
	Line      int
	Construct Rule
	Field     string
	Text      string
	Err       error
}

func (e *SemanticError) Error() string {
	msg := fmt.Sprintf("%s at line %d", e.Construct, e.Line)
	if e.Field != "" {
		msg += fmt.Sprintf(": %s %q", e.Field, e.Text)
	}
	return msg + ": " + e.Err.Error()
}

func (e *SemanticError) Unwrap() error { return e.Err }

func grammarErr(ln line, format string, args ...any) *GrammarError {
	return &GrammarError{Line: ln.num, Snippet: snippet(ln.raw), Message: fmt.Sprintf(format, args...)}
}

func snippet(s string) string {
	const limit = 40
	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
