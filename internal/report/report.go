package report

import "github.com/chriserin/tap14/tap"

// Tally counts the outcomes in a document. Tests inside subtests are
// counted alongside top-level ones; Ran counts only top-level tests, which
// are the ones the document plan describes.
type Tally struct {
	Planned  int
	Ran      int
	Passed   int
	Failed   int
	Skipped  int
	Todo     int
	Subtests int

	BailedOut  bool
	BailReason string
}

// OK reports whether the run had no failures, did not bail out, and ran
// as many top-level tests as planned.
func (t Tally) OK() bool {
	return t.Failed == 0 && !t.BailedOut && t.Ran == t.Planned
}

func Count(doc *tap.Document) Tally {
	t := Tally{Planned: planned(doc.Plan)}
	// The visitor never fails.
	tap.Walk(doc.Body, func(path []string, s tap.Statement) error {
		switch s := s.(type) {
		case *tap.Test:
			if len(path) == 0 {
				t.Ran++
			}
			t.add(s)
		case *tap.Subtest:
			t.Subtests++
		case *tap.BailOut:
			if !t.BailedOut {
				t.BailedOut = true
				if s.Reason != nil {
					t.BailReason = *s.Reason
				}
			}
		}
		return nil
	})
	return t
}

// add classifies one test. A directive takes precedence over the result:
// a failing todo is not a failure.
func (t *Tally) add(test *tap.Test) {
	switch {
	case test.Directive != nil && test.Directive.Key == tap.Skip:
		t.Skipped++
	case test.Directive != nil && test.Directive.Key == tap.Todo:
		t.Todo++
	case test.Result:
		t.Passed++
	default:
		t.Failed++
	}
}

func planned(p tap.Plan) int {
	if n := p.Last - p.First + 1; n > 0 {
		return n
	}
	return 0
}
