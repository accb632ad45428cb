package types

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Universe is a scope of named definitions used to parse type expressions.
type Universe struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewUniverse returns a universe pre-populated with the builtin types.
func NewUniverse() *Universe {
	u := &Universe{defs: map[string]*Definition{}}
	for _, t := range []*Type{Bool, Int, Int64, Float64, String} {
		u.defs[t.Name] = t.Def
	}
	return u
}

// Declare adds a definition. Redeclaring a name is an error.
func (u *Universe) Declare(d *Definition) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, exists := u.defs[d.Name]; exists {
		return fmt.Errorf("type %q already declared", d.Name)
	}
	u.defs[d.Name] = d
	return nil
}

// Lookup returns the definition with the given name.
func (u *Universe) Lookup(name string) (*Definition, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	d, ok := u.defs[name]
	return d, ok
}

// Parse parses a type expression. Names in params resolve to type parameters
// before definitions are consulted.
//
//	type   := base { "?" | "[]" }
//	base   := ident [ "<" type { "," type } ">" ] | "(" type { "," type } ")"
func (u *Universe) Parse(expr string, params ...*Type) (*Type, error) {
	p := &parser{src: expr, u: u, params: params}
	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", expr, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse type %q: unexpected %q at offset %d", expr, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type parser struct {
	src    string
	pos    int
	u      *Universe
	params []*Type
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek(s string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) expect(s string) error {
	if !p.peek(s) {
		return fmt.Errorf("expected %q at offset %d", s, p.pos)
	}
	p.pos += len(s)
	return nil
}

func (p *parser) parseType() (*Type, error) {
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peek("?"):
			p.pos++
			t = Nullable(t)
		case p.peek("[]"):
			p.pos += 2
			t = ArrayOf(t)
		default:
			return t, nil
		}
	}
}

func (p *parser) parseList(closer string) ([]*Type, error) {
	var out []*Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.peek(",") {
			p.pos++
			continue
		}
		return out, p.expect(closer)
	}
}

func (p *parser) parseBase() (*Type, error) {
	if p.peek("(") {
		p.pos++
		members, err := p.parseList(")")
		if err != nil {
			return nil, err
		}
		return TupleOf(members...), nil
	}

	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, fmt.Errorf("expected type name at offset %d", start)
	}
	if name == "any" {
		return Any, nil
	}
	for _, param := range p.params {
		if param.Name == name {
			return param, nil
		}
	}

	def, ok := p.u.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	var args []*Type
	if p.peek("<") {
		p.pos++
		var err error
		if args, err = p.parseList(">"); err != nil {
			return nil, err
		}
	}
	if len(args) != len(def.Params) {
		return nil, fmt.Errorf("type %q expects %d type arguments, got %d", name, len(def.Params), len(args))
	}
	return def.Of(args...), nil
}
