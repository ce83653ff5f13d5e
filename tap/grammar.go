package tap

import (
	"fmt"
	"regexp"
	"strings"
)

// Keywords match case-insensitively; everything else is case-sensitive.
var (
	preambleRe     = regexp.MustCompile(`^(?i:tap)[ \t]+(?i:version)[ \t]+(\S+)$`)
	planRe         = regexp.MustCompile(`^(-?\d+)\.\.(-?\d+)(?:[ \t]*#[ \t]*(.*))?$`)
	testRe         = regexp.MustCompile(`^(?i:(not[ \t]+ok|ok))(?:[ \t]+(.*))?$`)
	testNumberRe   = regexp.MustCompile(`^(\d+)(?:[ \t]+|$|#)`)
	directiveRe    = regexp.MustCompile(`^#[ \t]*(?i:(skip|todo))\b[ \t:]*(.*)$`)
	anyDirectiveRe = regexp.MustCompile(`^#[ \t]*(\w+)\b[ \t:]*(.*)$`)
	bailOutRe      = regexp.MustCompile(`^(?i:bail[ \t]+out!)[ \t]*(.*)$`)
	pragmaRe       = regexp.MustCompile(`^(?i:pragma)[ \t]+([+-])?([\w.-]+)$`)
	subtestRe      = regexp.MustCompile(`^#[ \t]*(?i:subtest)\b(?::[ \t]*(.*))?$`)
)

const (
	yamlOpen  = "---"
	yamlClose = "..."
)

type line struct {
	num    int    // 1-based
	indent int    // leading spaces and tabs
	text   string // content after the indentation, trailing blanks trimmed
	raw    string // full line without the line terminator
}

func (l line) blank() bool { return l.text == "" }

func splitLines(src string) []line {
	parts := strings.Split(src, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	lines := make([]line, len(parts))
	for i, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		body := strings.TrimLeft(p, " \t")
		lines[i] = line{
			num:    i + 1,
			indent: len(p) - len(body),
			text:   strings.TrimRight(body, " \t"),
			raw:    p,
		}
	}
	return lines
}

func isComment(text string) bool {
	return strings.HasPrefix(text, "#")
}

// scanner recognizes productions over whole lines. Each block of a stream
// is scoped by its indentation: a block ends at the first non-blank line
// indented less than the block, and a line indented more than the block
// opens a nested subtest.
type scanner struct {
	lines    []line
	pos      int
	maxDepth int
}

func newScanner(src string, maxDepth int) *scanner {
	return &scanner{lines: splitLines(src), maxDepth: maxDepth}
}

// next returns the index of the first non-blank line at or after i, or -1.
func (s *scanner) next(i int) int {
	for ; i < len(s.lines); i++ {
		if !s.lines[i].blank() {
			return i
		}
	}
	return -1
}

// first positions the scanner on the first non-blank line.
func (s *scanner) first() (line, error) {
	j := s.next(s.pos)
	if j < 0 {
		return line{}, &GrammarError{Line: len(s.lines) + 1, Message: "unexpected end of input"}
	}
	s.pos = j
	return s.lines[j], nil
}

// finish fails if anything but blank lines remain.
func (s *scanner) finish() error {
	if j := s.next(s.pos); j >= 0 {
		return grammarErr(s.lines[j], "unexpected trailing input")
	}
	return nil
}

func (s *scanner) document() (*Node, error) {
	for s.pos < len(s.lines) && (s.lines[s.pos].blank() || isComment(s.lines[s.pos].text)) {
		s.pos++
	}
	if s.pos == len(s.lines) {
		return nil, &GrammarError{Line: len(s.lines) + 1, Message: "expected TAP version preamble, found end of input"}
	}
	ln := s.lines[s.pos]
	pre := matchPreamble(ln)
	if pre == nil {
		return nil, grammarErr(ln, "expected TAP version preamble")
	}
	s.pos++

	items, err := s.block(0, 0)
	if err != nil {
		return nil, err
	}
	blocks, err := groupBlocks(items)
	if err != nil {
		return nil, err
	}

	doc := &Node{Rule: RuleDocument, Line: ln.num, Children: []*Node{pre}}
	doc.Children = append(doc.Children, blocks...)
	return doc, nil
}

// groupBlocks folds top-level items into plan and body blocks. A body is a
// maximal run of statements between plans.
func groupBlocks(items []*Node) ([]*Node, error) {
	var blocks []*Node
	for _, it := range items {
		if it.Rule == RulePlan {
			blocks = append(blocks, it)
			continue
		}
		if n := len(blocks); n == 0 || blocks[n-1].Rule != RuleBody {
			blocks = append(blocks, &Node{Rule: RuleBody, Text: it.Text, Line: it.Line})
		}
		body := blocks[len(blocks)-1]
		body.Children = append(body.Children, it)
	}

	if len(blocks) > 2 {
		b := blocks[2]
		return nil, &GrammarError{
			Line:    b.Line,
			Snippet: snippet(b.Text),
			Message: fmt.Sprintf("unexpected %s: a document holds one plan and one body", b.Rule),
		}
	}
	if len(blocks) == 1 && blocks[0].Rule == RulePlan {
		blocks = append(blocks, &Node{Rule: RuleBody, Line: blocks[0].Line})
	}
	return blocks, nil
}

func (s *scanner) block(indent, depth int) ([]*Node, error) {
	var items []*Node
	for s.pos < len(s.lines) {
		ln := s.lines[s.pos]
		if ln.blank() {
			s.pos++
			continue
		}
		if ln.indent < indent {
			break
		}
		if ln.indent > indent {
			if end, ok := s.commentRun(indent); ok {
				s.pos = end
				continue
			}
			name := s.leadingName(ln)
			n, err := s.subtest(name, ln.indent, depth+1, ln.num)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
			continue
		}
		if n := matchPlan(ln); n != nil {
			s.pos++
			items = append(items, n)
			continue
		}
		n, err := s.statement(indent, depth)
		if err != nil {
			return nil, err
		}
		if n != nil {
			items = append(items, n)
		}
	}
	return items, nil
}

// commentRun reports whether the lines indented deeper than indent, from the
// current line on, are all comments, and returns the index just past them.
func (s *scanner) commentRun(indent int) (int, bool) {
	i := s.pos
	for ; i < len(s.lines); i++ {
		ln := s.lines[i]
		if ln.blank() {
			continue
		}
		if ln.indent <= indent {
			break
		}
		if !isComment(ln.text) {
			return 0, false
		}
	}
	return i, true
}

// leadingName consumes a "# Subtest: name" line that opens an unannounced
// subtest at the subtest's own indentation and returns the name node.
func (s *scanner) leadingName(ln line) *Node {
	name, ok := matchSubtestComment(ln)
	if !ok || name == nil {
		return nil
	}
	j := s.next(s.pos + 1)
	if j < 0 || s.lines[j].indent != ln.indent {
		return nil
	}
	s.pos = j
	return name
}

// statement recognizes the statement starting at the current line. It
// returns a nil node for a discarded comment.
func (s *scanner) statement(indent, depth int) (*Node, error) {
	ln := s.lines[s.pos]

	if n := matchTest(ln); n != nil {
		s.pos++
		for {
			blk, err := s.yamlBlock(indent)
			if err != nil {
				return nil, err
			}
			if blk == nil {
				break
			}
			n.Children = append(n.Children, blk)
		}
		return n, nil
	}
	if n := matchBailOut(ln); n != nil {
		s.pos++
		return n, nil
	}
	if n := matchPragma(ln); n != nil {
		s.pos++
		return n, nil
	}
	if name, ok := matchSubtestComment(ln); ok {
		if j := s.next(s.pos + 1); j >= 0 && s.lines[j].indent > indent {
			s.pos = j
			return s.subtest(name, s.lines[j].indent, depth+1, ln.num)
		}
		s.pos++
		return nil, nil
	}
	s.pos++
	if isComment(ln.text) {
		return nil, nil
	}
	return leaf(RuleAnything, ln.text, ln.num), nil
}

// subtest recognizes the indented block starting at the current line. The
// plan and statements may come in any order.
func (s *scanner) subtest(name *Node, indent, depth, lineNum int) (*Node, error) {
	if depth > s.maxDepth {
		return nil, &GrammarError{
			Line:    s.lines[s.pos].num,
			Snippet: snippet(s.lines[s.pos].raw),
			Message: fmt.Sprintf("subtest nesting exceeds %d levels", s.maxDepth),
			Err:     ErrMaxDepth,
		}
	}

	n := &Node{Rule: RuleSubtest, Line: lineNum}
	if name != nil {
		n.Children = append(n.Children, name)
	}
	items, err := s.block(indent, depth)
	if err != nil {
		return nil, err
	}
	n.Children = append(n.Children, items...)
	return n, nil
}

// yamlBlock consumes a YAML block following a test line, if one starts at
// the next non-blank line. Inner lines are captured with the indentation of
// the opening delimiter stripped; whitespace-only lines are skipped.
func (s *scanner) yamlBlock(indent int) (*Node, error) {
	j := s.next(s.pos)
	if j < 0 {
		return nil, nil
	}
	open := s.lines[j]
	if open.indent <= indent || open.text != yamlOpen {
		return nil, nil
	}

	n := &Node{Rule: RuleYAMLBlock, Line: open.num}
	for i := j + 1; i < len(s.lines); i++ {
		ln := s.lines[i]
		if ln.blank() {
			continue
		}
		if ln.indent == open.indent && ln.text == yamlClose {
			s.pos = i + 1
			return n, nil
		}
		if ln.indent < open.indent {
			return nil, grammarErr(open, "unterminated YAML block (line %d is outside it)", ln.num)
		}
		n.Children = append(n.Children, leaf(RuleYAML, ln.raw[open.indent:], ln.num))
	}
	return nil, grammarErr(open, "unterminated YAML block")
}

func matchPreamble(ln line) *Node {
	m := preambleRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	return &Node{Rule: RulePreamble, Text: ln.text, Line: ln.num, Children: []*Node{
		leaf(RuleVersion, m[1], ln.num),
	}}
}

func matchPlan(ln line) *Node {
	m := planRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	n := &Node{Rule: RulePlan, Text: ln.text, Line: ln.num, Children: []*Node{
		leaf(RuleFirst, m[1], ln.num),
		leaf(RuleLast, m[2], ln.num),
	}}
	if m[3] != "" {
		n.Children = append(n.Children, leaf(RuleReason, m[3], ln.num))
	}
	return n
}

func matchTest(ln line) *Node {
	m := testRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	n := &Node{Rule: RuleTest, Text: ln.text, Line: ln.num, Children: []*Node{
		leaf(RuleResult, m[1], ln.num),
	}}

	rest := m[2]
	if nm := testNumberRe.FindStringSubmatch(rest); nm != nil {
		n.Children = append(n.Children, leaf(RuleNumber, nm[1], ln.num))
		rest = strings.TrimLeft(rest[len(nm[1]):], " \t")
	}

	var directive *Node
	if i := directiveStart(rest); i >= 0 {
		dm := directiveRe.FindStringSubmatch(rest[i:])
		directive = &Node{Rule: RuleDirective, Text: rest[i:], Line: ln.num, Children: []*Node{
			leaf(RuleKey, dm[1], ln.num),
		}}
		if dm[2] != "" {
			directive.Children = append(directive.Children, leaf(RuleReason, dm[2], ln.num))
		}
		rest = rest[:i]
	}

	desc := strings.TrimSpace(rest)
	switch {
	case desc == "-":
		desc = ""
	case strings.HasPrefix(desc, "- "), strings.HasPrefix(desc, "-\t"):
		desc = strings.TrimLeft(desc[1:], " \t")
	}
	if desc != "" {
		n.Children = append(n.Children, leaf(RuleDescription, desc, ln.num))
	}
	if directive != nil {
		n.Children = append(n.Children, directive)
	}
	return n
}

// directiveStart returns the offset of the first unescaped '#' in s that
// opens a skip or todo directive, or -1.
func directiveStart(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '#':
			if directiveRe.MatchString(s[i:]) {
				return i
			}
		}
	}
	return -1
}

// matchDirective is the standalone directive production. It accepts any
// key word so the builder can name an unrecognized key.
func matchDirective(ln line) *Node {
	m := anyDirectiveRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	n := &Node{Rule: RuleDirective, Text: ln.text, Line: ln.num, Children: []*Node{
		leaf(RuleKey, m[1], ln.num),
	}}
	if m[2] != "" {
		n.Children = append(n.Children, leaf(RuleReason, m[2], ln.num))
	}
	return n
}

func matchBailOut(ln line) *Node {
	m := bailOutRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	n := &Node{Rule: RuleBailOut, Text: ln.text, Line: ln.num}
	if m[1] != "" {
		n.Children = append(n.Children, leaf(RuleReason, m[1], ln.num))
	}
	return n
}

func matchPragma(ln line) *Node {
	m := pragmaRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil
	}
	n := &Node{Rule: RulePragma, Text: ln.text, Line: ln.num}
	if m[1] != "" {
		n.Children = append(n.Children, leaf(RuleFlag, m[1], ln.num))
	}
	n.Children = append(n.Children, leaf(RuleOption, m[2], ln.num))
	return n
}

// matchSubtestComment reports whether ln is a "# Subtest" introducer and
// returns its name node, which is nil for a bare "# Subtest".
func matchSubtestComment(ln line) (*Node, bool) {
	m := subtestRe.FindStringSubmatch(ln.text)
	if m == nil {
		return nil, false
	}
	if m[1] == "" {
		return nil, true
	}
	return leaf(RuleName, m[1], ln.num), true
}
