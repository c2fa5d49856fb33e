package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// Define is one `#define NAME value` integer constant extracted from source.
type Define struct {
	Name  string
	Value int
}

// StructField is one member of a parsed struct declaration.
type StructField struct {
	Name     string
	TypeName string
}

// StructDecl is a parsed `struct Name { ... };` declaration.
type StructDecl struct {
	Name   string
	Fields []StructField
}

// UniformDecl is one parsed uniform, whether declared at file scope or
// inside a uniform/buffer block. BlockName is empty for file-scope
// uniforms.
type UniformDecl struct {
	Name        string
	TypeName    string
	ArrayLength int // 0 or 1 means not an array
	BlockName   string
}

// BlockDecl is a parsed `uniform Name { ... };` or `buffer Name { ... };`.
type BlockDecl struct {
	Name     string
	IsBuffer bool
	Fields   []UniformDecl
}

// InOutDecl is a parsed `in`/`out` stage-interface declaration.
type InOutDecl struct {
	Name     string
	TypeName string
	IsOutput bool
}

// FunctionDecl is a parsed function definition.
type FunctionDecl struct {
	Name       string
	ReturnType string
	Body       string
}

// Source is everything Parse extracts from one shader stage's text, in
// source order.
type Source struct {
	Defines   []Define
	Structs   []StructDecl
	Uniforms  []UniformDecl
	Blocks    []BlockDecl
	InOuts    []InOutDecl
	Functions []FunctionDecl
}

var (
	reDefine   = regexp.MustCompile(`^\s*#define\s+(\w+)\s+(-?\w+)\s*$`)
	reStruct   = regexp.MustCompile(`^\s*struct\s+(\w+)\s*\{`)
	reUniform  = regexp.MustCompile(`^\s*uniform\s+(\w+)\s+(\w+)(\[([\w]+)\])?\s*;`)
	reBlock    = regexp.MustCompile(`^\s*(uniform|buffer)\s+(\w+)\s*\{`)
	reInOut    = regexp.MustCompile(`^\s*(in|out)\s+(\w+)\s+(\w+)\s*;`)
	reFuncSig  = regexp.MustCompile(`^\s*(\w+)\s+(\w+)\s*\([^)]*\)\s*\{`)
	reField    = regexp.MustCompile(`^\s*(\w+)\s+(\w+)(\[([\w]+)\])?\s*;`)
)

// Parse extracts, in source order, #define integer values, struct
// declarations, uniform declarations (file-scope and block members),
// uniform/buffer block declarations, in/out declarations, and function
// definitions. Array sizes that reference a #define are resolved against
// the defines collected so far.
func Parse(source string) *Source {
	out := &Source{}
	defines := map[string]int{}
	lines := strings.Split(source, "\n")

	resolveLength := func(raw string) int {
		if raw == "" {
			return 0
		}
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
		if v, ok := defines[raw]; ok {
			return v
		}
		return 0
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := reDefine.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[2]); err == nil {
				defines[m[1]] = v
				out.Defines = append(out.Defines, Define{Name: m[1], Value: v})
			}
			continue
		}

		if m := reBlock.FindStringSubmatch(line); m != nil {
			block := BlockDecl{Name: m[2], IsBuffer: m[1] == "buffer"}
			i++
			for i < len(lines) && !strings.Contains(lines[i], "}") {
				if fm := reField.FindStringSubmatch(lines[i]); fm != nil {
					field := UniformDecl{
						TypeName:    fm[1],
						Name:        fm[2],
						ArrayLength: resolveLength(fm[4]),
						BlockName:   block.Name,
					}
					block.Fields = append(block.Fields, field)
					out.Uniforms = append(out.Uniforms, field)
				}
				i++
			}
			out.Blocks = append(out.Blocks, block)
			continue
		}

		if m := reStruct.FindStringSubmatch(line); m != nil {
			decl := StructDecl{Name: m[1]}
			i++
			for i < len(lines) && !strings.Contains(lines[i], "}") {
				if fm := reField.FindStringSubmatch(lines[i]); fm != nil {
					decl.Fields = append(decl.Fields, StructField{TypeName: fm[1], Name: fm[2]})
				}
				i++
			}
			out.Structs = append(out.Structs, decl)
			continue
		}

		if m := reUniform.FindStringSubmatch(line); m != nil {
			out.Uniforms = append(out.Uniforms, UniformDecl{
				TypeName:    m[1],
				Name:        m[2],
				ArrayLength: resolveLength(m[4]),
			})
			continue
		}

		if m := reInOut.FindStringSubmatch(line); m != nil {
			out.InOuts = append(out.InOuts, InOutDecl{
				IsOutput: m[1] == "out",
				TypeName: m[2],
				Name:     m[3],
			})
			continue
		}

		if m := reFuncSig.FindStringSubmatch(line); m != nil {
			var body strings.Builder
			depth := 1
			i++
			for i < len(lines) && depth > 0 {
				depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
				if depth > 0 {
					body.WriteString(lines[i])
					body.WriteByte('\n')
				}
				i++
			}
			i--
			out.Functions = append(out.Functions, FunctionDecl{
				ReturnType: m[1],
				Name:       m[2],
				Body:       body.String(),
			})
			continue
		}
	}

	return out
}
