package suite

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"testwright/internal/combinator"
	"testwright/internal/types"
)

// Value is a literal with an explicitly declared type, written in suite files
// as {type: "Box<int>", value: 3}.
type Value struct {
	Type  *types.Type
	Value any
}

func (v Value) RuntimeType() *types.Type {
	return v.Type
}

func (v Value) Equal(other any) bool {
	o, ok := other.(Value)
	return ok && v.Type.Equal(o.Type) && combinator.Equal(v.Value, o.Value)
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.Type, v.Value)
}

// literals decodes YAML nodes into argument values.
type literals struct {
	universe *types.Universe
}

func (l literals) decode(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return l.decode(n.Content[0])
	case yaml.AliasNode:
		return l.decode(n.Alias)
	case yaml.SequenceNode:
		return l.list(n)
	case yaml.MappingNode:
		return l.typed(n)
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		var i int
		err := n.Decode(&i)
		return i, err
	case "!!float":
		var f float64
		err := n.Decode(&f)
		return f, err
	default:
		return n.Value, nil
	}
}

// list decodes a sequence node. A nil node yields a nil list.
func (l literals) list(n *yaml.Node) ([]any, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode {
		return l.list(n.Alias)
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list", n.Line)
	}
	out := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := l.decode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// rows decodes a list of lists.
func (l literals) rows(n *yaml.Node) ([][]any, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of rows", n.Line)
	}
	out := make([][]any, 0, len(n.Content))
	for _, c := range n.Content {
		row, err := l.list(c)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (l literals) typed(n *yaml.Node) (any, error) {
	var spec struct {
		Type  string    `yaml:"type"`
		Value yaml.Node `yaml:"value"`
	}
	if err := n.Decode(&spec); err != nil {
		return nil, err
	}
	if spec.Type == "" {
		return nil, fmt.Errorf("line %d: mapping literals need a type", n.Line)
	}
	t, err := l.universe.Parse(spec.Type)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	inner, err := l.decode(&spec.Value)
	if err != nil {
		return nil, err
	}
	v, err := convert(t, inner)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

// convert coerces a plain literal to t.
func convert(t *types.Type, v any) (any, error) {
	if v == nil {
		if !t.IsNullable() {
			return nil, fmt.Errorf("null is not a valid %s", t)
		}
		return nil, nil
	}
	u := t.Underlying()

	switch {
	case u.IsEnum():
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("enum %s members are written by name, got %v", u, v)
		}
		for _, m := range u.EnumValues() {
			if m.(types.EnumValue).Name == name {
				return m, nil
			}
		}
		return nil, fmt.Errorf("%q is not a member of enum %s", name, u)
	case u.Equal(types.Int64):
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
	case u.Equal(types.Float64):
		switch x := v.(type) {
		case int:
			return float64(x), nil
		case float64:
			return x, nil
		}
	case u.Equal(types.Int), u.Equal(types.String), u.Equal(types.Bool):
		if u.AssignableFrom(types.TypeOf(v)) {
			return v, nil
		}
	case u.Kind == types.KindArray:
		items, ok := v.([]any)
		if !ok {
			break
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := convert(u.Elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case u.Kind == types.KindAny:
		return v, nil
	default:
		return Value{Type: u, Value: v}, nil
	}
	return nil, fmt.Errorf("%v is not a valid %s", v, t)
}
