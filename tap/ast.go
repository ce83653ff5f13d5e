package tap

// Layer 2: typed TAP14 document tree

// Document is the root of a parsed TAP stream.
type Document struct {
	Preamble Preamble
	Plan     Plan
	Body     []Statement
}

// Preamble declares the TAP version. Version is taken verbatim (e.g. "14", "13.1").
type Preamble struct {
	Version string
}

// Plan declares the first and last planned test numbers. Reason is usually
// set when tests were skipped.
type Plan struct {
	First  int
	Last   int
	Reason *string
}

// DirectiveKey is the kind of a Directive.
type DirectiveKey int

const (
	Skip DirectiveKey = iota
	Todo
)

func (k DirectiveKey) String() string {
	switch k {
	case Skip:
		return "skip"
	case Todo:
		return "todo"
	}
	return "unknown"
}

type Directive struct {
	Key    DirectiveKey
	Reason *string
}

// StatementKind is the discriminant of a Statement.
type StatementKind string

const (
	KindAnything StatementKind = "anything"
	KindBailOut  StatementKind = "bail_out"
	KindPragma   StatementKind = "pragma"
	KindSubtest  StatementKind = "subtest"
	KindTest     StatementKind = "test"
)

// Statement is one entry of a Body: *Anything, *BailOut, *Pragma, *Subtest
// or *Test. The set is closed.
type Statement interface {
	Kind() StatementKind
	statement()
}

// Anything is a line no other construct claimed.
type Anything struct {
	Text string
}

type BailOut struct {
	Reason *string
}

// Pragma is an interpreter hint. Flag is nil when neither + nor - was given.
type Pragma struct {
	Flag   *bool
	Option string
}

// Subtest is a nested TAP stream with its own Plan and Body.
type Subtest struct {
	Name *string
	Plan Plan
	Body []Statement
}

// Test is a single test point. YAML holds the inner lines of every YAML
// block attached to the test, in source order.
type Test struct {
	Result      bool
	Number      *int
	Description *string
	Directive   *Directive
	YAML        []string
}

func (*Anything) Kind() StatementKind { return KindAnything }
func (*BailOut) Kind() StatementKind  { return KindBailOut }
func (*Pragma) Kind() StatementKind   { return KindPragma }
func (*Subtest) Kind() StatementKind  { return KindSubtest }
func (*Test) Kind() StatementKind     { return KindTest }

func (*Anything) statement() {}
func (*BailOut) statement()  {}
func (*Pragma) statement()   {}
func (*Subtest) statement()  {}
func (*Test) statement()     {}
