package tap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// builder converts Layer 1 nodes into the Layer 2 document tree.
type builder struct {
	strictPlans bool
	logger      logrus.FieldLogger
}

func newBuilder(opts Options) *builder {
	return &builder{strictPlans: opts.StrictPlans, logger: opts.Logger}
}

func invariant(format string, args ...any) {
	panic("tap: invariant violated: " + fmt.Sprintf(format, args...))
}

func strPtr(s string) *string { return &s }

func buildPreamble(n *Node) Preamble {
	v := n.child(RuleVersion)
	if v == nil {
		invariant("preamble without version")
	}
	return Preamble{Version: v.Text}
}

func buildPlan(n *Node) (Plan, error) {
	first, err := buildInt(n, RuleFirst)
	if err != nil {
		return Plan{}, err
	}
	last, err := buildInt(n, RuleLast)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{First: first, Last: last}
	if r := n.child(RuleReason); r != nil {
		p.Reason = strPtr(r.Text)
	}
	return p, nil
}

func buildInt(n *Node, field Rule) (int, error) {
	var raw string
	if c := n.child(field); c != nil {
		raw = c.Text
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &SemanticError{Line: n.Line, Construct: n.Rule, Field: field.String(), Text: raw, Err: ErrInvalidNumber}
	}
	return v, nil
}

func buildDirective(n *Node) (Directive, error) {
	var raw string
	if k := n.child(RuleKey); k != nil {
		raw = k.Text
	}
	d := Directive{}
	switch strings.ToLower(raw) {
	case "skip":
		d.Key = Skip
	case "todo":
		d.Key = Todo
	default:
		return Directive{}, &SemanticError{Line: n.Line, Construct: RuleDirective, Field: "key", Text: raw, Err: ErrUnknownDirective}
	}
	if r := n.child(RuleReason); r != nil {
		d.Reason = strPtr(r.Text)
	}
	return d, nil
}

// buildTest accumulates the test's parts in the order the grammar yields
// them. A repeated part overwrites the earlier one; YAML blocks concatenate.
func buildTest(n *Node) (*Test, error) {
	t := &Test{}
	for _, c := range n.Children {
		switch c.Rule {
		case RuleResult:
			switch strings.Join(strings.Fields(strings.ToLower(c.Text)), " ") {
			case "ok":
				t.Result = true
			case "not ok":
				t.Result = false
			default:
				return nil, &SemanticError{Line: n.Line, Construct: RuleTest, Field: "result", Text: c.Text, Err: ErrInvalidResult}
			}
		case RuleNumber:
			v, err := strconv.Atoi(c.Text)
			if err != nil {
				return nil, &SemanticError{Line: n.Line, Construct: RuleTest, Field: "number", Text: c.Text, Err: ErrInvalidNumber}
			}
			t.Number = &v
		case RuleDescription:
			t.Description = strPtr(c.Text)
		case RuleDirective:
			d, err := buildDirective(c)
			if err != nil {
				return nil, err
			}
			t.Directive = &d
		case RuleYAMLBlock:
			for _, y := range c.Children {
				t.YAML = append(t.YAML, y.Text)
			}
		default:
			invariant("%s node inside test", c.Rule)
		}
	}
	return t, nil
}

func buildBailOut(n *Node) *BailOut {
	b := &BailOut{}
	if r := n.child(RuleReason); r != nil {
		b.Reason = strPtr(r.Text)
	}
	return b
}

func buildPragma(n *Node) *Pragma {
	p := &Pragma{}
	if f := n.child(RuleFlag); f != nil {
		on := f.Text == "+"
		p.Flag = &on
	}
	if o := n.child(RuleOption); o != nil {
		p.Option = o.Text
	}
	return p
}

// statement dispatches a statement node to its builder.
func (b *builder) statement(n *Node) (Statement, error) {
	switch n.Rule {
	case RuleTest:
		t, err := buildTest(n)
		if err != nil {
			return nil, err
		}
		return t, nil
	case RuleBailOut:
		return buildBailOut(n), nil
	case RulePragma:
		return buildPragma(n), nil
	case RuleSubtest:
		st, err := b.subtest(n)
		if err != nil {
			return nil, err
		}
		return st, nil
	case RuleAnything:
		return &Anything{Text: n.Text}, nil
	}
	invariant("%s node in statement position", n.Rule)
	return nil, nil
}

// subtest separates a subtest's interleaved children into its plan and
// body. The last plan wins unless strict plans are requested; the body keeps
// the relative order of the remaining statements.
func (b *builder) subtest(n *Node) (*Subtest, error) {
	st := &Subtest{}
	children := n.Children
	if len(children) > 0 && children[0].Rule == RuleName {
		st.Name = strPtr(children[0].Text)
		children = children[1:]
	}

	var plan *Plan
	for _, c := range children {
		if c.Rule != RulePlan {
			s, err := b.statement(c)
			if err != nil {
				return nil, err
			}
			st.Body = append(st.Body, s)
			continue
		}

		p, err := buildPlan(c)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			if b.strictPlans {
				return nil, &SemanticError{Line: c.Line, Construct: RuleSubtest, Field: "plan", Text: c.Text, Err: ErrDuplicatePlan}
			}
			b.logger.WithFields(logrus.Fields{
				"line":    c.Line,
				"plan":    c.Text,
				"subtest": subtestLabel(st),
			}).Debug("Subtest declares more than one plan, keeping the last")
		}
		plan = &p
	}

	if plan == nil {
		err := &SemanticError{Line: n.Line, Construct: RuleSubtest, Err: ErrMissingPlan}
		if st.Name != nil {
			err.Field, err.Text = "name", *st.Name
		}
		return nil, err
	}
	st.Plan = *plan
	return st, nil
}

func subtestLabel(st *Subtest) string {
	if st.Name == nil {
		return "(unnamed)"
	}
	return *st.Name
}

// document resolves the top-level plan and body blocks, which may come in
// either order.
func (b *builder) document(n *Node) (*Document, error) {
	if len(n.Children) == 0 || n.Children[0].Rule != RulePreamble {
		invariant("document without preamble")
	}
	doc := &Document{Preamble: buildPreamble(n.Children[0])}

	var plan *Plan
	var body bool
	for _, c := range n.Children[1:] {
		switch c.Rule {
		case RulePlan:
			if plan != nil {
				return nil, &SemanticError{Line: c.Line, Construct: RuleDocument, Field: "plan", Text: c.Text, Err: ErrDuplicateBlock}
			}
			p, err := buildPlan(c)
			if err != nil {
				return nil, err
			}
			plan = &p
		case RuleBody:
			if body {
				return nil, &SemanticError{Line: c.Line, Construct: RuleDocument, Field: "body", Text: c.Text, Err: ErrDuplicateBlock}
			}
			body = true
			for _, sn := range c.Children {
				s, err := b.statement(sn)
				if err != nil {
					return nil, err
				}
				doc.Body = append(doc.Body, s)
			}
		default:
			invariant("%s node at document scope", c.Rule)
		}
	}

	if plan == nil {
		return nil, &SemanticError{Line: n.Line, Construct: RuleDocument, Err: ErrMissingPlan}
	}
	doc.Plan = *plan
	return doc, nil
}
