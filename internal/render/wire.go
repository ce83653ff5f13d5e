package render

import (
	"fmt"

	"github.com/chriserin/tap14/tap"
)

// Wire shapes shared by the JSON and YAML encoders. Absent optional fields
// are emitted as null. Each statement is a single-key object whose key is
// the statement kind.

type document struct {
	Preamble preamble    `json:"preamble" yaml:"preamble"`
	Plan     plan        `json:"plan" yaml:"plan"`
	Body     []statement `json:"body" yaml:"body"`
}

type preamble struct {
	Version string `json:"version" yaml:"version"`
}

type plan struct {
	First  int     `json:"first" yaml:"first"`
	Last   int     `json:"last" yaml:"last"`
	Reason *string `json:"reason" yaml:"reason"`
}

type directive struct {
	Key    string  `json:"key" yaml:"key"`
	Reason *string `json:"reason" yaml:"reason"`
}

type test struct {
	Result      bool       `json:"result" yaml:"result"`
	Number      *int       `json:"number" yaml:"number"`
	Description *string    `json:"description" yaml:"description"`
	Directive   *directive `json:"directive" yaml:"directive"`
	YAML        []string   `json:"yaml" yaml:"yaml"`
}

type bailOut struct {
	Reason *string `json:"reason" yaml:"reason"`
}

type pragma struct {
	Flag   *bool  `json:"flag" yaml:"flag"`
	Option string `json:"option" yaml:"option"`
}

type subtest struct {
	Name *string     `json:"name" yaml:"name"`
	Plan plan        `json:"plan" yaml:"plan"`
	Body []statement `json:"body" yaml:"body"`
}

type statement map[tap.StatementKind]any

func encodeDocument(doc *tap.Document) document {
	return document{
		Preamble: preamble{Version: doc.Preamble.Version},
		Plan:     encodePlan(doc.Plan),
		Body:     encodeBody(doc.Body),
	}
}

func encodePlan(p tap.Plan) plan {
	return plan{First: p.First, Last: p.Last, Reason: p.Reason}
}

func encodeBody(body []tap.Statement) []statement {
	out := make([]statement, 0, len(body))
	for _, s := range body {
		out = append(out, statement{s.Kind(): encodeStatement(s)})
	}
	return out
}

func encodeStatement(s tap.Statement) any {
	switch s := s.(type) {
	case *tap.Anything:
		return s.Text
	case *tap.BailOut:
		return bailOut{Reason: s.Reason}
	case *tap.Pragma:
		return pragma{Flag: s.Flag, Option: s.Option}
	case *tap.Subtest:
		return subtest{Name: s.Name, Plan: encodePlan(s.Plan), Body: encodeBody(s.Body)}
	case *tap.Test:
		t := test{
			Result:      s.Result,
			Number:      s.Number,
			Description: s.Description,
			YAML:        append([]string{}, s.YAML...),
		}
		if s.Directive != nil {
			t.Directive = &directive{Key: s.Directive.Key.String(), Reason: s.Directive.Reason}
		}
		return t
	}
	panic(fmt.Sprintf("render: unexpected statement %T", s))
}
