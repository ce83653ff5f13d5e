package tap

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(nodes []*Node) []Rule {
	var out []Rule
	for _, n := range nodes {
		out = append(out, n.Rule)
	}
	return out
}

func recognizeDocument(t *testing.T, src string) *Node {
	t.Helper()
	n, err := newScanner(src, DefaultMaxDepth).document()
	require.NoError(t, err)
	return n
}

func TestSplitLines_IndentAndTerminators(t *testing.T) {
	lines := splitLines("a\r\n    b  \n\t\tc\n\n")
	require.Len(t, lines, 4)
	assert.Equal(t, line{num: 1, indent: 0, text: "a", raw: "a"}, lines[0])
	assert.Equal(t, line{num: 2, indent: 4, text: "b", raw: "    b  "}, lines[1])
	assert.Equal(t, 2, lines[2].indent)
	assert.True(t, lines[3].blank())
}

func TestGrammar_DocumentPlanThenBody(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..2\nok 1\nok 2\n")

	assert.Equal(t, []Rule{RulePreamble, RulePlan, RuleBody}, rules(n.Children))
	assert.Equal(t, []Rule{RuleTest, RuleTest}, rules(n.Children[2].Children))
}

func TestGrammar_DocumentBodyThenPlan(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\nok 1\nok 2\n1..2\n")

	assert.Equal(t, []Rule{RulePreamble, RuleBody, RulePlan}, rules(n.Children))
}

func TestGrammar_DocumentPlanOnlyGetsEmptyBody(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..0 # skipped\n")

	require.Equal(t, []Rule{RulePreamble, RulePlan, RuleBody}, rules(n.Children))
	assert.Empty(t, n.Children[2].Children)
}

func TestGrammar_DocumentTwoPlansReachAssembler(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n1..1\n")

	assert.Equal(t, []Rule{RulePreamble, RulePlan, RulePlan}, rules(n.Children))
}

func TestGrammar_DocumentThirdBlockIsGrammarError(t *testing.T) {
	_, err := newScanner("TAP version 14\nok 1\n1..2\nok 2\n", DefaultMaxDepth).document()

	var gerr *GrammarError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 4, gerr.Line)
	assert.Contains(t, gerr.Message, "unexpected body")
}

func TestGrammar_MissingPreamble(t *testing.T) {
	_, err := newScanner("1..1\nok 1\n", DefaultMaxDepth).document()

	var gerr *GrammarError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 1, gerr.Line)
	assert.Equal(t, "1..1", gerr.Snippet)
}

func TestGrammar_CommentsBeforePreambleAreSkipped(t *testing.T) {
	n := recognizeDocument(t, "# generated\n\nTAP version 14\n1..0\n")

	assert.Equal(t, 3, n.Children[0].Line)
}

func TestGrammar_TestLineParts(t *testing.T) {
	n := matchTest(splitLines("ok 1 - hello world # skip this is a reason")[0])
	require.NotNil(t, n)

	assert.Equal(t, []Rule{RuleResult, RuleNumber, RuleDescription, RuleDirective}, rules(n.Children))
	assert.Equal(t, "ok", n.Children[0].Text)
	assert.Equal(t, "1", n.Children[1].Text)
	assert.Equal(t, "hello world", n.Children[2].Text)
	dir := n.Children[3]
	assert.Equal(t, []Rule{RuleKey, RuleReason}, rules(dir.Children))
	assert.Equal(t, "skip", dir.Children[0].Text)
	assert.Equal(t, "this is a reason", dir.Children[1].Text)
}

func TestGrammar_TestLineVariants(t *testing.T) {
	tests := []struct {
		input string
		want  []Rule
	}{
		{"ok", []Rule{RuleResult}},
		{"not ok", []Rule{RuleResult}},
		{"nOt Ok", []Rule{RuleResult}},
		{"ok 123", []Rule{RuleResult, RuleNumber}},
		{"ok - hello world", []Rule{RuleResult, RuleDescription}},
		{"ok hello world", []Rule{RuleResult, RuleDescription}},
		{"ok # skip", []Rule{RuleResult, RuleDirective}},
		{"not ok 42 # todo this is a reason", []Rule{RuleResult, RuleNumber, RuleDirective}},
		{"ok 1#SKIP", []Rule{RuleResult, RuleNumber, RuleDirective}},
		{"ok 1 -", []Rule{RuleResult, RuleNumber}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := matchTest(splitLines(tt.input)[0])
			require.NotNil(t, n)
			assert.Equal(t, tt.want, rules(n.Children))
		})
	}
}

func TestGrammar_NotATestLine(t *testing.T) {
	for _, input := range []string{"okay", "not okay", "nok", "# ok"} {
		assert.Nil(t, matchTest(splitLines(input)[0]), input)
	}
}

func TestGrammar_HashWithoutDirectiveStaysInDescription(t *testing.T) {
	tests := map[string]string{
		"ok 1 - foo # bar":                 "foo # bar",
		"ok 2 - skipped # skipped":         "skipped # skipped",
		`ok 3 - escaped \# skip is kept`:   `escaped \# skip is kept`,
		`ok 4 - escaped \# then # todo no`: `escaped \# then`,
	}
	for input, want := range tests {
		n := matchTest(splitLines(input)[0])
		require.NotNil(t, n, input)
		desc := n.child(RuleDescription)
		require.NotNil(t, desc, input)
		assert.Equal(t, want, desc.Text, input)
	}
}

func TestGrammar_Plan(t *testing.T) {
	n := matchPlan(splitLines("1..20 # generated")[0])
	require.NotNil(t, n)

	assert.Equal(t, []Rule{RuleFirst, RuleLast, RuleReason}, rules(n.Children))
	assert.Equal(t, "generated", n.Children[2].Text)
	assert.Nil(t, matchPlan(splitLines("1..2 trailing")[0]))
}

func TestGrammar_BailOutAndPragma(t *testing.T) {
	b := matchBailOut(splitLines("BaIl OuT! something went terribly wrong")[0])
	require.NotNil(t, b)
	assert.Equal(t, []Rule{RuleReason}, rules(b.Children))

	p := matchPragma(splitLines("pRaGmA +strict")[0])
	require.NotNil(t, p)
	assert.Equal(t, []Rule{RuleFlag, RuleOption}, rules(p.Children))

	p = matchPragma(splitLines("pragma allow_anything")[0])
	require.NotNil(t, p)
	assert.Equal(t, []Rule{RuleOption}, rules(p.Children))
}

func TestGrammar_SubtestComment(t *testing.T) {
	name, ok := matchSubtestComment(splitLines("# Subtest: This is a subtest")[0])
	require.True(t, ok)
	assert.Equal(t, "This is a subtest", name.Text)

	name, ok = matchSubtestComment(splitLines("# subtest")[0])
	assert.True(t, ok)
	assert.Nil(t, name)

	_, ok = matchSubtestComment(splitLines("# Subtests are nice")[0])
	assert.False(t, ok)
}

func TestGrammar_SubtestChildrenKeepSourceOrder(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n# Subtest: s\n    ok 1\n    1..2\n    ok 2\nok 1 - s\n")

	body := n.Children[2]
	require.Equal(t, []Rule{RuleSubtest, RuleTest}, rules(body.Children))
	sub := body.Children[0]
	assert.Equal(t, []Rule{RuleName, RuleTest, RulePlan, RuleTest}, rules(sub.Children))
	assert.Equal(t, 3, sub.Line)
}

func TestGrammar_IndentedLinesWithoutIntroducerOpenSubtest(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n    1..1\n    ok 1\nok 1\n")

	body := n.Children[2]
	require.Equal(t, []Rule{RuleSubtest, RuleTest}, rules(body.Children))
	assert.Equal(t, []Rule{RulePlan, RuleTest}, rules(body.Children[0].Children))
}

func TestGrammar_IndentedCommentsDoNotOpenSubtest(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..2\nok 1\n  # diag\n    # more\nok 2\n")

	assert.Equal(t, []Rule{RuleTest, RuleTest}, rules(n.Children[2].Children))
}

func TestGrammar_LeadingSubtestCommentNamesSubtest(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n    # Subtest: foo\n\n    ok 1\n    1..1\nok 1\n")

	sub := n.Children[2].Children[0]
	assert.Equal(t, []Rule{RuleName, RuleTest, RulePlan}, rules(sub.Children))
	assert.Equal(t, "foo", sub.Children[0].Text)
	assert.Equal(t, 3, sub.Line)
}

func TestGrammar_LeadingSubtestCommentBeforeDeeperLinesNamesInnerSubtest(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n  # Subtest: inner\n    1..1\n    ok 1\n  1..1\nok 1\n")

	outer := n.Children[2].Children[0]
	require.Equal(t, []Rule{RuleSubtest, RulePlan}, rules(outer.Children))
	assert.Equal(t, []Rule{RuleName, RulePlan, RuleTest}, rules(outer.Children[0].Children))
}

func TestSnippet_CutsOnRuneBoundary(t *testing.T) {
	s := strings.Repeat("a", 39) + "é tail"

	got := snippet(s)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 39)+"...", got)
	assert.Equal(t, "short", snippet("short"))
}

func TestGrammar_SubtestCommentWithoutContentIsComment(t *testing.T) {
	n := recognizeDocument(t, "TAP version 14\n1..1\n# Subtest: nothing\nok 1\n")

	assert.Equal(t, []Rule{RuleTest}, rules(n.Children[2].Children))
}

func TestGrammar_YAMLBlock(t *testing.T) {
	s := newScanner("not ok 2\n"+
		"  ---\n"+
		"  YAML line 1\n"+
		"  YAML line 2\n"+
		"  YAML line 3\n"+
		"  ok 1 - this is considered YAML\n"+
		"        \r\n"+
		"  0..1 # even this is YAML\n"+
		"  ...\n", DefaultMaxDepth)
	s.pos = 1

	blk, err := s.yamlBlock(0)
	require.NoError(t, err)
	require.NotNil(t, blk)
	var got []string
	for _, c := range blk.Children {
		got = append(got, c.Text)
	}
	assert.Equal(t, []string{
		"YAML line 1",
		"YAML line 2",
		"YAML line 3",
		"ok 1 - this is considered YAML",
		"0..1 # even this is YAML",
	}, got)
	assert.Equal(t, 9, s.pos)
}

func TestGrammar_YAMLBlockUnterminated(t *testing.T) {
	for _, src := range []string{
		"ok\n  ---\n  a: 1\n",
		"ok\n  ---\n  a: 1\nok 2\n",
	} {
		s := newScanner(src, DefaultMaxDepth)
		s.pos = 1
		_, err := s.yamlBlock(0)

		var gerr *GrammarError
		require.True(t, errors.As(err, &gerr), src)
		assert.Equal(t, 2, gerr.Line)
		assert.Contains(t, gerr.Message, "unterminated YAML block")
	}
}

func TestGrammar_MaxDepth(t *testing.T) {
	src := "TAP version 14\n1..1\n" +
		"  1..1\n" +
		"    1..1\n" +
		"      1..1\n"

	_, err := newScanner(src, 2).document()

	var gerr *GrammarError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 5, gerr.Line)
	assert.True(t, errors.Is(err, ErrMaxDepth))

	_, err = newScanner(src, 3).document()
	assert.NoError(t, err)
}
