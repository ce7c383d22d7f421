package shaders

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

const (
	TOKEN_PREPROCESSOR = iota
	TOKEN_COMMENT
	TOKEN_IDENT
	TOKEN_NUMBER
	TOKEN_PUNCT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`#[^\n]*`), getToken(TOKEN_PREPROCESSOR))
	lexer.Add([]byte(`//[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`/\*([^*]|\r|\n|(\*+([^*/]|\r|\n)))*\*+/`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_IDENT))
	lexer.Add([]byte(`[0-9]+\.[0-9]*([eE][\+\-]?[0-9]+)?[fF]?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`\.[0-9]+([eE][\+\-]?[0-9]+)?[fF]?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`[0-9]+([eE][\+\-]?[0-9]+)?[uUfF]?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`[\(\)\{\}\[\];,\.\+\-\*/=<>!&\|\?:\^%~]`), getToken(TOKEN_PUNCT))
	lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

type token struct {
	typ  int
	text string
	line int
}

func tokenize(src string) ([]token, error) {
	scanner, err := lexer.Scanner([]byte(src))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	tokens := make([]token, 0, 128)
	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)
		if tok.Type == TOKEN_COMMENT {
			continue
		}
		tokens = append(tokens, token{typ: tok.Type, text: string(tok.Lexeme), line: tok.StartLine})
	}
	return tokens, nil
}

// Declaration is a global uniform, input, output or constant of a stage.
type Declaration struct {
	Qualifier string `json:"qualifier"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Line      int    `json:"line"`
}

type Reflection struct {
	Stage    Stage         `json:"-"`
	Version  string        `json:"version"`
	Uniforms []Declaration `json:"uniforms"`
	Inputs   []Declaration `json:"inputs"`
	Outputs  []Declaration `json:"outputs"`

	tokens []token
}

func findDeclaration(list []Declaration, name string) (Declaration, bool) {
	for _, d := range list {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

func (r *Reflection) Uniform(name string) (Declaration, bool) { return findDeclaration(r.Uniforms, name) }
func (r *Reflection) Input(name string) (Declaration, bool)   { return findDeclaration(r.Inputs, name) }
func (r *Reflection) Output(name string) (Declaration, bool)  { return findDeclaration(r.Outputs, name) }

var interpolationQualifiers = map[string]bool{"flat": true, "smooth": true, "noperspective": true}

// Reflect scans global declarations of a GLSL stage source.
func Reflect(stage Stage, src string) (*Reflection, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%v stage", stage)
	}

	r := &Reflection{Stage: stage, tokens: tokens}

	depth := 0
	statement := make([]token, 0, 8)
	for _, tok := range tokens {
		if tok.typ == TOKEN_PREPROCESSOR {
			fields := strings.Fields(tok.text[1:])
			if len(fields) >= 2 && fields[0] == "version" {
				r.Version = fields[1]
			}
			continue
		}
		if tok.typ == TOKEN_PUNCT {
			switch tok.text {
			case "{":
				depth++
				statement = statement[:0]
				continue
			case "}":
				depth--
				statement = statement[:0]
				continue
			case ";":
				if depth == 0 {
					r.addStatement(statement)
				}
				statement = statement[:0]
				continue
			}
		}
		if depth == 0 {
			statement = append(statement, tok)
		}
	}
	if depth != 0 {
		return nil, errors.Errorf("%v stage: unbalanced braces", stage)
	}
	return r, nil
}

func (r *Reflection) addStatement(st []token) {
	// layout(location = 0) out vec4 color;
	if len(st) > 0 && st[0].text == "layout" {
		for i, tok := range st {
			if tok.text == ")" {
				st = st[i+1:]
				break
			}
		}
	}
	for len(st) > 0 && interpolationQualifiers[st[0].text] {
		st = st[1:]
	}
	if len(st) < 3 || st[1].typ != TOKEN_IDENT || st[2].typ != TOKEN_IDENT {
		return
	}
	d := Declaration{Qualifier: st[0].text, Type: st[1].text, Name: st[2].text, Line: st[2].line}
	switch d.Qualifier {
	case "uniform":
		r.Uniforms = append(r.Uniforms, d)
	case "in":
		r.Inputs = append(r.Inputs, d)
	case "out":
		r.Outputs = append(r.Outputs, d)
	}
}

// ProgramReflection merges both stages of a program.
type ProgramReflection struct {
	Vertex   *Reflection `json:"vertex"`
	Fragment *Reflection `json:"fragment"`
}

func ReflectProgram(vert, frag string) (*ProgramReflection, error) {
	vr, err := Reflect(VertexStage, vert)
	if err != nil {
		return nil, err
	}
	fr, err := Reflect(FragmentStage, frag)
	if err != nil {
		return nil, err
	}
	return &ProgramReflection{Vertex: vr, Fragment: fr}, nil
}

// HasUniform reports whether any stage declares the uniform.
func (pr *ProgramReflection) HasUniform(name string) bool {
	if _, ok := pr.Vertex.Uniform(name); ok {
		return true
	}
	_, ok := pr.Fragment.Uniform(name)
	return ok
}

// HasAttribute reports whether the vertex stage consumes the attribute.
func (pr *ProgramReflection) HasAttribute(name string) bool {
	_, ok := pr.Vertex.Input(name)
	return ok
}
