package shaders

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const RequiredVersion = "330"

var glslTypes = map[string]bool{
	"void": true, "bool": true, "int": true, "uint": true, "float": true,
	"vec2": true, "vec3": true, "vec4": true,
	"ivec2": true, "ivec3": true, "ivec4": true,
	"uvec2": true, "uvec3": true, "uvec4": true,
	"bvec2": true, "bvec3": true, "bvec4": true,
	"mat2": true, "mat3": true, "mat4": true,
	"mat2x2": true, "mat2x3": true, "mat2x4": true,
	"mat3x2": true, "mat3x3": true, "mat3x4": true,
	"mat4x2": true, "mat4x3": true, "mat4x4": true,
	"sampler2D": true, "sampler3D": true, "samplerCube": true,
}

var glslKeywords = map[string]bool{
	"uniform": true, "in": true, "out": true, "inout": true, "const": true,
	"layout": true, "location": true, "struct": true, "precision": true,
	"highp": true, "mediump": true, "lowp": true,
	"flat": true, "smooth": true, "noperspective": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"break": true, "continue": true, "return": true, "discard": true,
	"true": true, "false": true,
}

var glslBuiltins = map[string]bool{
	"gl_Position": true, "gl_PointSize": true, "gl_VertexID": true, "gl_InstanceID": true,
	"gl_FragCoord": true, "gl_FragDepth": true, "gl_FrontFacing": true, "gl_PointCoord": true,

	"radians": true, "degrees": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "pow": true, "exp": true, "log": true,
	"exp2": true, "log2": true, "sqrt": true, "inversesqrt": true,
	"abs": true, "sign": true, "floor": true, "ceil": true, "fract": true, "mod": true,
	"min": true, "max": true, "clamp": true, "mix": true, "step": true, "smoothstep": true,
	"length": true, "distance": true, "dot": true, "cross": true, "normalize": true,
	"reflect": true, "refract": true, "faceforward": true,
	"transpose": true, "inverse": true, "determinant": true,
	"texture": true, "textureLod": true, "texelFetch": true,
}

var knownAttributes = map[string]string{
	AttribPosition: "vec3",
	AttribNormal:   "vec3",
}

type Problem struct {
	Stage   Stage  `json:"stage"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%v:%d: %s", p.Stage, p.Line, p.Message)
	}
	return fmt.Sprintf("%v: %s", p.Stage, p.Message)
}

// CheckError lists everything that would stop the pair from linking.
type CheckError struct {
	Problems []Problem `json:"problems"`
}

func (e *CheckError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return "shader check failed:\n" + strings.Join(lines, "\n")
}

func (e *CheckError) add(stage Stage, line int, format string, args ...interface{}) {
	e.Problems = append(e.Problems, Problem{Stage: stage, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Check runs a compile/link preflight over a vertex/fragment pair without a GL context.
// It returns *CheckError when problems were found.
func Check(vert, frag string) error {
	pr, err := ReflectProgram(vert, frag)
	if err != nil {
		return err
	}

	cerr := &CheckError{}
	for _, r := range []*Reflection{pr.Vertex, pr.Fragment} {
		if r.Version != RequiredVersion {
			cerr.add(r.Stage, 0, "expected #version %s, got %q", RequiredVersion, r.Version)
		}
		checkIdentifiers(cerr, r)
	}

	if !usesIdentifier(pr.Vertex, "gl_Position") {
		cerr.add(VertexStage, 0, "gl_Position is never written")
	}
	for _, in := range pr.Vertex.Inputs {
		if typ, known := knownAttributes[in.Name]; !known {
			cerr.add(VertexStage, in.Line, "unknown vertex attribute %q", in.Name)
		} else if typ != in.Type {
			cerr.add(VertexStage, in.Line, "attribute %q must be %s, got %s", in.Name, typ, in.Type)
		}
	}
	for _, in := range pr.Fragment.Inputs {
		out, ok := pr.Vertex.Output(in.Name)
		if !ok {
			cerr.add(FragmentStage, in.Line, "input %q is not written by the vertex stage", in.Name)
		} else if out.Type != in.Type {
			cerr.add(FragmentStage, in.Line, "input %q type %s does not match vertex output type %s", in.Name, in.Type, out.Type)
		}
	}
	if len(pr.Fragment.Outputs) > 1 {
		cerr.add(FragmentStage, pr.Fragment.Outputs[1].Line, "more than one fragment output")
	}
	for _, out := range pr.Fragment.Outputs {
		if out.Type != "vec4" {
			cerr.add(FragmentStage, out.Line, "fragment output %q must be vec4, got %s", out.Name, out.Type)
		}
	}

	if len(cerr.Problems) != 0 {
		return cerr
	}
	return nil
}

func usesIdentifier(r *Reflection, name string) bool {
	for _, tok := range r.tokens {
		if tok.typ == TOKEN_IDENT && tok.text == name {
			return true
		}
	}
	return false
}

// defineName returns the macro name of a "#define NAME ..." line.
func defineName(line string) (string, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) < 2 || fields[0] != "define" {
		return "", false
	}
	name := fields[1]
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return name, name != ""
}

// declarations collects user struct types and every declared name: variables
// (including the ones after commas), functions, parameters and macros.
func declarations(tokens []token) (types, declared map[string]bool) {
	types = make(map[string]bool, len(glslTypes))
	for t := range glslTypes {
		types[t] = true
	}
	declared = make(map[string]bool)

	for i, tok := range tokens {
		if tok.typ == TOKEN_PREPROCESSOR {
			if name, ok := defineName(tok.text); ok {
				declared[name] = true
			}
		}
		if tok.typ == TOKEN_IDENT && tok.text == "struct" && i+1 < len(tokens) && tokens[i+1].typ == TOKEN_IDENT {
			types[tokens[i+1].text] = true
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].typ != TOKEN_IDENT || !types[tokens[i].text] || tokens[i+1].typ != TOKEN_IDENT {
			continue
		}
		declared[tokens[i+1].text] = true

		// the rest of the declaration statement: "a = x, b[2], c;"
		depth := 0
	statement:
		for j := i + 2; j < len(tokens); j++ {
			switch tokens[j].text {
			case "(", "[", "{":
				if depth == 0 && tokens[j].text == "(" && j == i+2 {
					// function declaration, parameters are declared by their own types
					break statement
				}
				depth++
			case ")", "]", "}":
				if depth == 0 {
					break statement
				}
				depth--
			case ";":
				break statement
			case ",":
				if depth == 0 && j+1 < len(tokens) && tokens[j+1].typ == TOKEN_IDENT {
					declared[tokens[j+1].text] = true
				}
			}
		}
	}
	return types, declared
}

func checkIdentifiers(cerr *CheckError, r *Reflection) {
	types, declared := declarations(r.tokens)

	reported := make(map[string]bool)
	for i, tok := range r.tokens {
		if tok.typ != TOKEN_IDENT {
			continue
		}
		// swizzles and struct fields
		if i > 0 && r.tokens[i-1].text == "." {
			continue
		}
		name := tok.text
		if types[name] || glslKeywords[name] || glslBuiltins[name] || declared[name] || reported[name] {
			continue
		}
		reported[name] = true
		cerr.add(r.Stage, tok.line, "undeclared identifier %q", name)
	}
}

// CheckVariant runs Check over the embedded sources of v.
func CheckVariant(v Variant) error {
	if err := Check(v.VertexSource(), v.FragmentSource()); err != nil {
		return errors.Wrapf(err, "%v", v)
	}
	return nil
}
