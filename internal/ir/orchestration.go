package ir

// Orchestration nodes compile authored directives into instruction text for
// a downstream interpreter. Nothing here is ever evaluated by the compiler:
// conditions, bounds, and paths are carried as literal text.

// Conditional pairs a textual condition with its consequent blocks and an
// optional alternate (from an immediately following Else sibling). HasElse
// discriminates an empty alternate from an absent one, so an authored Else
// with no content still renders its instruction line.
type Conditional struct {
	Condition string
	Then      []Block
	HasElse   bool
	Else      []Block
}

// Loop repeats its body. Limit is the textual iteration bound; Counter, when
// non-empty, names the iteration variable exposed to the body.
type Loop struct {
	Limit   string
	Counter string
	Body    []Block
}

// Break aborts the enclosing loop with a status tag and optional message.
type Break struct {
	Status  string
	Message string
}

// Return ends the whole run with a status tag and optional message.
type Return struct {
	Status  string
	Message string
}

// AskUser prompts the operator, offering Options when non-empty, and binds
// the answer under As.
type AskUser struct {
	Prompt  string
	Options []string
	As      string
}

// SpawnAgent delegates to another agent. Exactly one of Prompt or Input is
// set (HasPrompt discriminates an empty prompt string from an absent one).
// InputType, when non-empty, names the declared payload type the input was
// validated against. Instructions carries extra free text from the element
// body.
type SpawnAgent struct {
	Agent        string
	Model        string
	Description  string
	Prompt       string
	HasPrompt    bool
	Input        []Attr
	InputType    string
	Instructions string
}

// ReadFile instructs the interpreter to read Path (which may embed $VAR
// accessors or glob patterns) and bind the content under As.
type ReadFile struct {
	Path     string
	As       string
	Required bool
}

// Table is a header row plus a row matrix.
type Table struct {
	Header []string
	Rows   [][]string
}

// VarRef is an accessor into a script variable: the declared name plus the
// ordered property path traversed. An empty path refers to the whole value.
// VarRef is a value type; Dot never mutates its receiver.
type VarRef struct {
	Name string
	Path []string
}

// Dot returns a new reference one segment deeper.
func (r VarRef) Dot(segment string) VarRef {
	path := make([]string, 0, len(r.Path)+1)
	path = append(path, r.Path...)
	path = append(path, segment)
	return VarRef{Name: r.Name, Path: path}
}

// Accessor renders the shell-style form: $NAME, or $NAME.a.b for a path.
func (r VarRef) Accessor() string {
	s := "$" + r.Name
	for _, seg := range r.Path {
		s += "." + seg
	}
	return s
}

// FuncRef names a callable for argument binding by the interpreter.
type FuncRef struct {
	Name string
}

func (*Conditional) Kind() Kind { return KindConditional }
func (*Loop) Kind() Kind        { return KindLoop }
func (*Break) Kind() Kind       { return KindBreak }
func (*Return) Kind() Kind      { return KindReturn }
func (*AskUser) Kind() Kind     { return KindAskUser }
func (*SpawnAgent) Kind() Kind  { return KindSpawnAgent }
func (*ReadFile) Kind() Kind    { return KindReadFile }
func (*Table) Kind() Kind       { return KindTable }
func (*VarRef) Kind() Kind      { return KindVarRef }
func (*FuncRef) Kind() Kind     { return KindFuncRef }

func (*Conditional) block() {}
func (*Loop) block()        {}
func (*Break) block()       {}
func (*Return) block()      {}
func (*AskUser) block()     {}
func (*SpawnAgent) block()  {}
func (*ReadFile) block()    {}
func (*Table) block()       {}

func (*VarRef) inline()  {}
func (*FuncRef) inline() {}
