package tap

// Layer 1: untyped parse tree tagged by construct kind.

// Rule tags a Node with the production that matched it.
type Rule int

const (
	RuleDocument Rule = iota
	RulePreamble
	RuleVersion
	RulePlan
	RuleFirst
	RuleLast
	RuleReason
	RuleBody
	RuleTest
	RuleResult
	RuleNumber
	RuleDescription
	RuleDirective
	RuleKey
	RuleYAMLBlock
	RuleYAML
	RuleBailOut
	RulePragma
	RuleFlag
	RuleOption
	RuleSubtest
	RuleName
	RuleAnything
)

var ruleNames = [...]string{
	RuleDocument:    "document",
	RulePreamble:    "preamble",
	RuleVersion:     "version",
	RulePlan:        "plan",
	RuleFirst:       "first",
	RuleLast:        "last",
	RuleReason:      "reason",
	RuleBody:        "body",
	RuleTest:        "test",
	RuleResult:      "result",
	RuleNumber:      "number",
	RuleDescription: "description",
	RuleDirective:   "directive",
	RuleKey:         "key",
	RuleYAMLBlock:   "yaml_block",
	RuleYAML:        "yaml",
	RuleBailOut:     "bail_out",
	RulePragma:      "pragma",
	RuleFlag:        "flag",
	RuleOption:      "option",
	RuleSubtest:     "subtest",
	RuleName:        "name",
	RuleAnything:    "anything",
}

func (r Rule) String() string {
	if r >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "unknown"
}

// Node is one matched production. Text holds the matched source text for
// terminals; composite nodes carry their parts in Children, in source order.
type Node struct {
	Rule     Rule
	Text     string
	Line     int // 1-based
	Children []*Node
}

func leaf(rule Rule, text string, line int) *Node {
	return &Node{Rule: rule, Text: text, Line: line}
}

// child returns the first direct child tagged rule, or nil.
func (n *Node) child(rule Rule) *Node {
	for _, c := range n.Children {
		if c.Rule == rule {
			return c
		}
	}
	return nil
}
