package sqltemplate

import (
	"strings"

	"lakehouse/internal/domain"
)

// BuiltQuery is a compiled template. ParamNames[i] is bound to placeholder
// ordinal i+1; a name referenced twice appears twice.
type BuiltQuery struct {
	SQL        string
	ParamNames []string
}

// Compile turns template into a parameterized statement for d. Only the key
// set of params matters. Conditional fragments are resolved first and the
// result is then scanned for {name} tokens, so a token may be formed by text
// on either side of a resolved fragment. Every referenced placeholder must be
// present in params, otherwise a ValidationError naming the first missing
// parameter is returned.
func Compile(template string, params map[string]any, d Dialect) (*BuiltQuery, error) {
	sql, names := substitute(Expand(template, params), d)

	for _, name := range names {
		if _, ok := params[name]; !ok {
			return nil, domain.ErrValidation("invalid input: missing parameter `%s`", name)
		}
	}
	return &BuiltQuery{SQL: sql, ParamNames: names}, nil
}

// Expand resolves conditional fragments only, leaving {name} tokens in place.
// A kept fragment's content is copied verbatim; brackets inside it are literal.
func Expand(template string, params map[string]any) string {
	var out strings.Builder
	out.Grow(len(template))
	for i := 0; i < len(template); {
		if template[i] == '[' {
			if name, content, end, ok := matchConditional(template, i); ok {
				if _, present := params[name]; present {
					out.WriteString(content)
				}
				i = end
				continue
			}
		}
		out.WriteByte(template[i])
		i++
	}
	return out.String()
}

// substitute replaces each {name} token in text with the next positional
// placeholder of d and returns the names in order of occurrence.
func substitute(text string, d Dialect) (string, []string) {
	var out strings.Builder
	out.Grow(len(text))
	var names []string
	for i := 0; i < len(text); {
		if text[i] == '{' {
			if name, end, ok := matchPlaceholder(text, i); ok {
				names = append(names, name)
				out.WriteString(d.Placeholder(len(names)))
				i = end
				continue
			}
		}
		out.WriteByte(text[i])
		i++
	}
	return out.String(), names
}

// matchConditional matches "[name:content]" at src[start]. end is the index
// just past the closing bracket.
func matchConditional(src string, start int) (name, content string, end int, ok bool) {
	i := start + 1
	j := scanName(src, i)
	if j == i || j >= len(src) || src[j] != ':' {
		return "", "", 0, false
	}
	closing := strings.IndexByte(src[j+1:], ']')
	if closing < 0 {
		return "", "", 0, false
	}
	contentEnd := j + 1 + closing
	return src[i:j], src[j+1 : contentEnd], contentEnd + 1, true
}

// matchPlaceholder matches "{name}" at src[start].
func matchPlaceholder(src string, start int) (name string, end int, ok bool) {
	i := start + 1
	j := scanName(src, i)
	if j == i || j >= len(src) || src[j] != '}' {
		return "", 0, false
	}
	return src[i:j], j + 1, true
}

// scanName returns the index just past the run of name bytes starting at i.
func scanName(src string, i int) int {
	for i < len(src) && isNameByte(src[i]) {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
