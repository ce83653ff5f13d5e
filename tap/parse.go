package tap

import (
	"io"

	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds subtest nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 64

// Options configures a parse. The zero value is ready to use.
type Options struct {
	// MaxDepth is the deepest subtest nesting accepted.
	MaxDepth int
	// StrictPlans rejects a subtest that declares more than one plan
	// instead of keeping the last one.
	StrictPlans bool
	Logger      logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

// Parse parses a complete TAP14 document.
func Parse(content []byte) (*Document, error) {
	return ParseWithOptions(content, Options{})
}

// ParseDocument is Parse for a string.
func ParseDocument(content string) (*Document, error) {
	return ParseWithOptions([]byte(content), Options{})
}

// ParseWithOptions parses a complete TAP14 document. It returns a
// *GrammarError when the text matches no production and a *SemanticError
// when a construct has invalid content.
func ParseWithOptions(content []byte, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	log := opts.Logger.WithField("component", "tap-parser")
	log.WithField("bytes", len(content)).Debug("Parsing TAP document")

	n, err := newScanner(string(content), opts.MaxDepth).document()
	if err != nil {
		log.WithError(err).Debug("TAP document rejected by grammar")
		return nil, err
	}
	doc, err := newBuilder(opts).document(n)
	if err != nil {
		log.WithError(err).Debug("TAP document has invalid content")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"version":    doc.Preamble.Version,
		"statements": len(doc.Body),
	}).Debug("Parsed TAP document")
	return doc, nil
}

// parseLine recognizes a single-line production that must make up the
// whole input.
func parseLine(content string, match func(line) *Node, what string) (*Node, error) {
	s := newScanner(content, DefaultMaxDepth)
	ln, err := s.first()
	if err != nil {
		return nil, err
	}
	n := match(ln)
	if n == nil {
		return nil, grammarErr(ln, "expected %s", what)
	}
	s.pos++
	if err := s.finish(); err != nil {
		return nil, err
	}
	return n, nil
}

// ParsePreamble parses a "TAP version" line.
func ParsePreamble(content string) (Preamble, error) {
	n, err := parseLine(content, matchPreamble, "TAP version preamble")
	if err != nil {
		return Preamble{}, err
	}
	return buildPreamble(n), nil
}

// ParsePlan parses a plan such as "1..5 # reason".
func ParsePlan(content string) (Plan, error) {
	n, err := parseLine(content, matchPlan, "plan")
	if err != nil {
		return Plan{}, err
	}
	return buildPlan(n)
}

// ParseDirective parses a directive such as "# SKIP no network".
func ParseDirective(content string) (Directive, error) {
	n, err := parseLine(content, matchDirective, "directive")
	if err != nil {
		return Directive{}, err
	}
	return buildDirective(n)
}

// ParseBailOut parses a "Bail out!" line.
func ParseBailOut(content string) (*BailOut, error) {
	n, err := parseLine(content, matchBailOut, "bail out")
	if err != nil {
		return nil, err
	}
	return buildBailOut(n), nil
}

// ParsePragma parses a "pragma [+-]option" line.
func ParsePragma(content string) (*Pragma, error) {
	n, err := parseLine(content, matchPragma, "pragma")
	if err != nil {
		return nil, err
	}
	return buildPragma(n), nil
}

// ParseTest parses a test line and any YAML blocks following it.
func ParseTest(content string) (*Test, error) {
	s := newScanner(content, DefaultMaxDepth)
	ln, err := s.first()
	if err != nil {
		return nil, err
	}
	n := matchTest(ln)
	if n == nil {
		return nil, grammarErr(ln, "expected test")
	}
	s.pos++
	for {
		blk, err := s.yamlBlock(ln.indent)
		if err != nil {
			return nil, err
		}
		if blk == nil {
			break
		}
		n.Children = append(n.Children, blk)
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return buildTest(n)
}

// ParseSubtest parses a subtest, optionally introduced by a
// "# Subtest: name" comment. The plan may appear anywhere among the
// subtest's statements.
func ParseSubtest(content string) (*Subtest, error) {
	opts := Options{}.withDefaults()
	s := newScanner(content, opts.MaxDepth)
	ln, err := s.first()
	if err != nil {
		return nil, err
	}

	var n *Node
	if name, ok := matchSubtestComment(ln); ok {
		j := s.next(s.pos + 1)
		if j < 0 || s.lines[j].indent <= ln.indent {
			return nil, grammarErr(ln, "subtest has no indented content")
		}
		s.pos = j
		n, err = s.subtest(name, s.lines[j].indent, 1, ln.num)
	} else {
		n, err = s.subtest(nil, ln.indent, 1, ln.num)
	}
	if err != nil {
		return nil, err
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return newBuilder(opts).subtest(n)
}

// ParseStatement parses one statement: a test, bail out, pragma, subtest
// or any other line.
func ParseStatement(content string) (Statement, error) {
	opts := Options{}.withDefaults()
	s := newScanner(content, opts.MaxDepth)
	ln, err := s.first()
	if err != nil {
		return nil, err
	}
	if matchPlan(ln) != nil {
		return nil, grammarErr(ln, "expected statement, found plan")
	}
	n, err := s.statement(ln.indent, 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, grammarErr(ln, "expected statement, found comment")
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return newBuilder(opts).statement(n)
}
