package render

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokExpr
	tokOpenIf
	tokOpenEach
	tokCloseIf
	tokCloseEach
)

type token struct {
	kind tokenKind
	text string // literal text, expression source, or block argument
}

// lex splits src into literal text and {{...}} tags. An unterminated "{{"
// is kept as literal text.
func lex(src string) []token {
	var out []token
	for len(src) > 0 {
		start := strings.Index(src, openDelim)
		if start < 0 {
			out = append(out, token{kind: tokText, text: src})
			break
		}
		end := strings.Index(src[start+len(openDelim):], closeDelim)
		if end < 0 {
			out = append(out, token{kind: tokText, text: src})
			break
		}
		if start > 0 {
			out = append(out, token{kind: tokText, text: src[:start]})
		}
		inner := src[start+len(openDelim) : start+len(openDelim)+end]
		out = append(out, classify(inner))
		src = src[start+len(openDelim)+end+len(closeDelim):]
	}
	return out
}

func classify(inner string) token {
	s := strings.TrimSpace(inner)
	switch {
	case s == "/if":
		return token{kind: tokCloseIf}
	case s == "/each":
		return token{kind: tokCloseEach}
	case strings.HasPrefix(s, "#if ") || s == "#if":
		return token{kind: tokOpenIf, text: strings.TrimSpace(strings.TrimPrefix(s, "#if"))}
	case strings.HasPrefix(s, "#each ") || s == "#each":
		return token{kind: tokOpenEach, text: strings.TrimSpace(strings.TrimPrefix(s, "#each"))}
	default:
		return token{kind: tokExpr, text: s}
	}
}
