package render

import "strings"

type exprTokKind int

const (
	etPath exprTokKind = iota
	etString
	etEq
	etQuestion
	etColon
	etPipe
	etLParen
	etRParen
	etBad
)

type exprTok struct {
	kind exprTokKind
	text string
}

func isPathByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanExpr tokenizes the inside of a tag. Quoted literals may contain any
// character, including the operators themselves.
func scanExpr(src string) []exprTok {
	var out []exprTok
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return append(out, exprTok{kind: etBad, text: src[i:]})
			}
			out = append(out, exprTok{kind: etString, text: src[i+1 : i+1+end]})
			i += end + 2
		case c == '=' && i+1 < len(src) && src[i+1] == '=':
			out = append(out, exprTok{kind: etEq, text: "=="})
			i += 2
		case c == '?':
			out = append(out, exprTok{kind: etQuestion, text: "?"})
			i++
		case c == ':':
			out = append(out, exprTok{kind: etColon, text: ":"})
			i++
		case c == '|':
			out = append(out, exprTok{kind: etPipe, text: "|"})
			i++
		case c == '(':
			out = append(out, exprTok{kind: etLParen, text: "("})
			i++
		case c == ')':
			out = append(out, exprTok{kind: etRParen, text: ")"})
			i++
		case isPathByte(c):
			j := i
			for j < len(src) && isPathByte(src[j]) {
				j++
			}
			out = append(out, exprTok{kind: etPath, text: src[i:j]})
			i = j
		default:
			return append(out, exprTok{kind: etBad, text: src[i:]})
		}
	}
	return out
}

// operand is either a store path or a quoted literal.
type operand struct {
	path    string
	literal string
	quoted  bool
}

func operandOf(t exprTok) (operand, bool) {
	switch t.kind {
	case etPath:
		return operand{path: t.text}, true
	case etString:
		return operand{literal: t.text, quoted: true}, true
	default:
		return operand{}, false
	}
}

// literalOf accepts a quoted string or a bare word as a comparison literal.
func literalOf(t exprTok) (string, bool) {
	switch t.kind {
	case etString, etPath:
		return t.text, true
	default:
		return "", false
	}
}

func kinds(toks []exprTok) []exprTokKind {
	out := make([]exprTokKind, len(toks))
	for i, t := range toks {
		out[i] = t.kind
	}
	return out
}

func matches(toks []exprTok, pattern ...exprTokKind) bool {
	ks := kinds(toks)
	if len(ks) != len(pattern) {
		return false
	}
	for i := range ks {
		if ks[i] != pattern[i] {
			return false
		}
	}
	return true
}

// parseExpr turns a substitution tag into a Var or Ternary node.
// Anything outside the grammar becomes a Var over the raw source, which
// resolves to nothing at render time.
func parseExpr(src string) node {
	toks := scanExpr(src)

	switch {
	case matches(toks, etPath):
		return &varNode{path: toks[0].text}
	case matches(toks, etPath, etPipe, etPath):
		return &varNode{path: toks[0].text, filter: toks[2].text}
	case len(toks) == 7 && toks[0].kind == etPath && toks[1].kind == etEq &&
		toks[3].kind == etQuestion && toks[5].kind == etColon:
		lit, ok := literalOf(toks[2])
		whenTrue, okT := operandOf(toks[4])
		whenFalse, okF := operandOf(toks[6])
		if ok && okT && okF {
			return &ternaryNode{lhs: toks[0].text, literal: lit, whenTrue: whenTrue, whenFalse: whenFalse}
		}
	}
	return &varNode{path: src}
}

type condKind int

const (
	condTruthy condKind = iota
	condEquals
	condIncludes
	condNever
)

type condition struct {
	kind    condKind
	path    string
	literal string
}

const includesSuffix = ".includes"

// parseCond parses an #if argument: path, path == literal, or path.includes(literal).
func parseCond(src string) condition {
	toks := scanExpr(src)

	switch {
	case matches(toks, etPath):
		return condition{kind: condTruthy, path: toks[0].text}
	case len(toks) == 3 && toks[0].kind == etPath && toks[1].kind == etEq:
		if lit, ok := literalOf(toks[2]); ok {
			return condition{kind: condEquals, path: toks[0].text, literal: lit}
		}
	case len(toks) == 4 && toks[0].kind == etPath && toks[1].kind == etLParen && toks[3].kind == etRParen &&
		strings.HasSuffix(toks[0].text, includesSuffix):
		if lit, ok := literalOf(toks[2]); ok {
			return condition{kind: condIncludes, path: strings.TrimSuffix(toks[0].text, includesSuffix), literal: lit}
		}
	}
	return condition{kind: condNever}
}
