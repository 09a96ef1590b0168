// Package render interprets document template strings against a value store.
//
// A template is plain text interleaved with {{...}} tags:
//
//	{{path}}                               value lookup
//	{{path | filter}}                      value lookup passed through longDate, money or pct
//	{{lhs == 'literal' ? a : b}}           single equality ternary; a and b are paths or quoted literals
//	{{#if cond}}...{{/if}}                 cond is path, path == 'literal' or path.includes('x')
//	{{#each path}}...{{/each}}             body rendered once per array element bound to "this"
//
// Rendering never fails. Missing or mistyped data renders as the empty string.
package render

import (
	"strings"

	"resolution-backend/internal/rules"
	"resolution-backend/internal/values"
)

type node interface {
	render(sb *strings.Builder, store *values.Store)
}

type textNode struct{ text string }

type varNode struct {
	path   string
	filter string
}

type ternaryNode struct {
	lhs       string
	literal   string
	whenTrue  operand
	whenFalse operand
}

type ifNode struct {
	cond condition
	body []node
}

type eachNode struct {
	path string
	body []node
}

// Template is a parsed template string, reusable across stores.
type Template struct {
	nodes []node
}

// Parse builds the node tree for src.
func Parse(src string) *Template {
	p := &parser{toks: lex(src), open: map[tokenKind]int{}}
	nodes, _ := p.parseUntil(-1)
	return &Template{nodes: nodes}
}

// Execute renders the template against store. The store is only read.
func (t *Template) Execute(store *values.Store) string {
	var sb strings.Builder
	renderNodes(&sb, t.nodes, store)
	return sb.String()
}

// Render parses and executes src in one step.
func Render(src string, store *values.Store) string {
	return Parse(src).Execute(store)
}

type parser struct {
	toks []token
	pos  int
	open map[tokenKind]int // open block count by closing token kind
}

// parseUntil collects nodes until the closing token `until` is consumed
// (closed=true) or input ends. A closing tag that belongs to an enclosing
// block is left for that block; any other stray closing tag is dropped.
func (p *parser) parseUntil(until tokenKind) (nodes []node, closed bool) {
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		switch tok.kind {
		case tokText:
			p.pos++
			nodes = append(nodes, &textNode{text: tok.text})
		case tokExpr:
			p.pos++
			nodes = append(nodes, parseExpr(tok.text))
		case tokOpenIf, tokOpenEach:
			p.pos++
			nodes = append(nodes, p.parseBlock(tok)...)
		case tokCloseIf, tokCloseEach:
			if tok.kind == until {
				p.pos++
				return nodes, true
			}
			if p.open[tok.kind] > 0 {
				return nodes, false
			}
			p.pos++
		}
	}
	return nodes, false
}

// parseBlock returns the block node, or the bare body when the block is
// never closed so its contents still render in place.
func (p *parser) parseBlock(opener token) []node {
	closer := tokCloseIf
	if opener.kind == tokOpenEach {
		closer = tokCloseEach
	}
	p.open[closer]++
	body, closed := p.parseUntil(closer)
	p.open[closer]--
	if !closed {
		return body
	}
	if opener.kind == tokOpenEach {
		return []node{&eachNode{path: opener.text, body: body}}
	}
	return []node{&ifNode{cond: parseCond(opener.text), body: body}}
}

func renderNodes(sb *strings.Builder, nodes []node, store *values.Store) {
	for _, n := range nodes {
		n.render(sb, store)
	}
}

func (n *textNode) render(sb *strings.Builder, _ *values.Store) {
	sb.WriteString(n.text)
}

func (n *varNode) render(sb *strings.Builder, store *values.Store) {
	v, ok := store.Lookup(n.path)
	if !ok {
		return
	}
	text := v.Text()
	if n.filter != "" {
		text = ApplyFilter(n.filter, text)
	}
	sb.WriteString(text)
}

func (n *ternaryNode) render(sb *strings.Builder, store *values.Store) {
	lhs, _ := store.Lookup(n.lhs)
	chosen := n.whenFalse
	if lhs.Text() == n.literal {
		chosen = n.whenTrue
	}
	sb.WriteString(resolveOperand(chosen, store))
}

// resolveOperand returns a quoted literal as-is, a string-valued path's value,
// or the path name itself when the path does not hold a string.
func resolveOperand(op operand, store *values.Store) string {
	if op.quoted {
		return op.literal
	}
	if v, ok := store.Lookup(op.path); ok {
		if s, isString := v.AsString(); isString {
			return s
		}
	}
	return op.path
}

func (n *ifNode) render(sb *strings.Builder, store *values.Store) {
	if evalCond(n.cond, store) {
		renderNodes(sb, n.body, store)
	}
}

func (n *eachNode) render(sb *strings.Builder, store *values.Store) {
	v, ok := store.Lookup(n.path)
	if !ok {
		return
	}
	items, isArray := v.AsArray()
	if !isArray {
		return
	}
	for _, item := range items {
		renderNodes(sb, n.body, store.Child(item))
	}
}

func evalCond(c condition, store *values.Store) bool {
	switch c.kind {
	case condTruthy:
		v, ok := store.Lookup(c.path)
		return ok && Truthy(v)
	case condEquals:
		v, ok := store.Lookup(c.path)
		return ok && v.Text() == c.literal
	case condIncludes:
		v, ok := store.Lookup(c.path)
		return ok && rules.Includes(v, c.literal)
	default:
		return false
	}
}

// Truthy applies #if semantics: bools as-is, non-empty strings, non-zero
// numbers and non-empty collections are true.
func Truthy(v values.Value) bool {
	switch v.Kind() {
	case values.KindBool:
		b, _ := v.AsBool()
		return b
	case values.KindString:
		s, _ := v.AsString()
		return s != ""
	case values.KindNumber:
		n, _ := v.AsNumber()
		return n != 0
	case values.KindArray, values.KindObject:
		return v.Len() > 0
	default:
		return false
	}
}
