package addrset

import (
	"strings"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

// maxParseDepth bounds recursion over arbitrarily nested expressions, per
// spec.md §9 "Recursion depth".
const maxParseDepth = 32

// VarTable resolves a "$name" reference to its underlying textual
// expression, the external collaborator named "resolve(name,
// scope=ADDRESS)" in spec.md §6.
type VarTable interface {
	Resolve(name string) (string, error)
}

// StaticVarTable is the direct map-backed realization of spec.md's
// resolve(name, scope=ADDRESS) callout.
type StaticVarTable map[string]string

// Resolve implements VarTable.
func (t StaticVarTable) Resolve(name string) (string, error) {
	text, ok := t[name]
	if !ok {
		return "", newError(UnknownVariable, "unknown variable %q", name)
	}
	return text, nil
}

// ParseOption configures a single call to Parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	strat payload.Strategy
}

// WithStrategy overrides the default payload merge/copy/release strategy
// (spec.md §9 "Payload propagation").
func WithStrategy(strat payload.Strategy) ParseOption {
	return func(c *parseConfig) { c.strat = strat }
}

func defaultParseConfig() parseConfig {
	return parseConfig{strat: payload.DefaultStrategy()}
}

// parser carries the two Set Heads (positive, shadow) and current negation
// state through a recursive descent over the address-expression grammar
// (spec.md §4.5), the direct analogue of the teacher's node package
// threading a `negate bool` through negationNormalForm's helper closure.
type parser struct {
	vars     VarTable
	strat    payload.Strategy
	positive *SetHead
	shadow   *SetHead
	depth    int
}

// Parse compiles an address expression into a frozen, read-only SetHead,
// per spec.md §6's `parse(text, vars) -> SetHead | Error`. On any error the
// top-level call releases both the positive and shadow heads; no partial
// SetHead is ever returned (spec.md §7).
func Parse(text string, vars VarTable, opts ...ParseOption) (*SetHead, error) {
	cfg := defaultParseConfig()
	for _, o := range opts {
		o(&cfg)
	}

	p := &parser{
		vars:     vars,
		strat:    cfg.strat,
		positive: NewSetHead(cfg.strat),
		shadow:   NewSetHead(cfg.strat),
	}

	if err := p.parseExpr(text, false); err != nil {
		p.positive.Release()
		p.shadow.Release()
		return nil, err
	}

	if err := mergeNegation(p.positive, p.shadow, cfg.strat); err != nil {
		p.positive.Release()
		p.shadow.Release()
		return nil, err
	}

	p.shadow.Release()
	p.positive.freeze()
	return p.positive, nil
}

// parseExpr implements:
//
//	expr := atom | '[' list ']' | '!' expr | var
//
// negate is the XOR of every enclosing '!' seen so far. A leaf atom is
// routed into p.positive when negate is false and p.shadow when true
// (spec.md §4.5).
func (p *parser) parseExpr(text string, negate bool) error {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		return newError(SyntaxError, "expression nesting exceeds depth limit (%d)", maxParseDepth)
	}
	if text == "" {
		return newError(SyntaxError, "empty expression")
	}

	switch text[0] {
	case '!':
		if len(text) < 2 {
			return newError(SyntaxError, "dangling '!'")
		}
		return p.parseExpr(text[1:], !negate)

	case '[':
		if !isBracketedList(text) {
			return newError(SyntaxError, "unbalanced brackets in %q", text)
		}
		items, err := splitTopLevel(text[1 : len(text)-1])
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := p.parseExpr(item, negate); err != nil {
				return err
			}
		}
		return nil

	case '$':
		name := text[1:]
		if name == "" {
			return newError(SyntaxError, "dangling '$'")
		}
		resolved, err := p.vars.Resolve(name)
		if err != nil {
			return err
		}
		sub := resolved
		if negate {
			// wrap the substituted text before recursing so that a raw
			// comma list resolved from the variable table is parsed
			// uniformly under negation, per spec.md §4.5.
			sub = "[" + resolved + "]"
		}
		return p.parseExpr(sub, negate)

	default:
		return p.parseLeaf(text, negate)
	}
}

func (p *parser) parseLeaf(text string, negate bool) error {
	iv, err := parseAtom(text)
	if err != nil {
		return err
	}
	if negate && iv.Flags.Has(FlagAny) {
		return newError(SyntaxError, "negation of \"any\" is not permitted")
	}

	target := p.positive
	if negate {
		target = p.shadow
	}
	return target.Insert(iv)
}

// isBracketedList reports whether s is enclosed by a single matching pair
// of '[' ']' spanning the whole string (as opposed to e.g. "[a],[b]",
// which merely starts with '[' and ends with ']').
func isBracketedList(s string) bool {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// splitTopLevel splits a list's inner text on commas that are not nested
// inside brackets. Whitespace is never trimmed: the grammar (spec.md §6)
// disallows whitespace inside lists entirely.
func splitTopLevel(s string) ([]string, error) {
	if s == "" {
		return nil, newError(SyntaxError, "empty list")
	}
	var items []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, newError(SyntaxError, "unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				items = append(items, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, newError(SyntaxError, "unbalanced brackets")
	}
	items = append(items, s[start:])
	for _, it := range items {
		if it == "" {
			return nil, newError(SyntaxError, "empty list item")
		}
		if strings.ContainsAny(it, " \t\r\n") {
			return nil, newError(SyntaxError, "whitespace inside list item %q", it)
		}
	}
	return items, nil
}
