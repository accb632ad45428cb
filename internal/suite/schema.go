package suite

import "gopkg.in/yaml.v3"

// File is the on-disk layout of one suite file.
type File struct {
	// Assembly groups the file's classes for per-assembly fixtures. It
	// defaults to the file name without extension.
	Assembly  string         `yaml:"assembly,omitempty"`
	Enums     []EnumSpec     `yaml:"enums,omitempty"`
	Types     []TypeSpec     `yaml:"types,omitempty"`
	Fixtures  []FixtureSpec  `yaml:"fixtures,omitempty"`
	Providers []ProviderSpec `yaml:"providers,omitempty"`
	Classes   []ClassSpec    `yaml:"classes,omitempty"`

	path string
}

// EnumSpec declares an enum type and its members in domain order.
type EnumSpec struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// TypeSpec declares a named, possibly generic, type.
type TypeSpec struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params,omitempty"`
	Implements []string `yaml:"implements,omitempty"`
}

// FixtureSpec declares a fixture type. Instances are recording resources
// that log and journal their lifecycle.
type FixtureSpec struct {
	Name       string   `yaml:"name"`
	Implements []string `yaml:"implements,omitempty"`
	// FailOn makes the named lifecycle phase fail: create or initialize.
	FailOn string `yaml:"failOn,omitempty"`
}

// ProviderSpec declares a named data provider referenced by method sources.
type ProviderSpec struct {
	Name string `yaml:"name"`
	// Values yields one row per element.
	Values *yaml.Node `yaml:"values,omitempty"`
	// Rows yields each element as a full argument row.
	Rows *yaml.Node `yaml:"rows,omitempty"`
	// Field reads the named field of the receiving class instance.
	Field string `yaml:"field,omitempty"`
	// Async defers the result behind an asynchronous computation.
	Async bool `yaml:"async,omitempty"`
	// Error makes every invocation fail with the given message.
	Error string `yaml:"error,omitempty"`
}

// ClassSpec declares a test class and its methods.
type ClassSpec struct {
	Name       string               `yaml:"name"`
	TypeParams []string             `yaml:"typeParams,omitempty"`
	Parameters []ParameterSpec      `yaml:"parameters,omitempty"`
	Properties []PropertySpec       `yaml:"properties,omitempty"`
	Fields     map[string]yaml.Node `yaml:"fields,omitempty"`
	Sources    []SourceSpec         `yaml:"sources,omitempty"`
	Methods    []MethodSpec         `yaml:"methods"`

	Line int `yaml:"-"`
}

// MethodSpec declares a test method.
type MethodSpec struct {
	Name        string          `yaml:"name"`
	TypeParams  []string        `yaml:"typeParams,omitempty"`
	Parameters  []ParameterSpec `yaml:"parameters,omitempty"`
	Sources     []SourceSpec    `yaml:"sources,omitempty"`
	Repeat      int             `yaml:"repeat,omitempty"`
	DisplayName string          `yaml:"displayName,omitempty"`

	Line int `yaml:"-"`
}

// ParameterSpec declares a positional parameter. For variadic parameters
// Type names the element type.
type ParameterSpec struct {
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	Optional bool         `yaml:"optional,omitempty"`
	Default  *yaml.Node   `yaml:"default,omitempty"`
	Variadic bool         `yaml:"variadic,omitempty"`
	Sources  []SourceSpec `yaml:"sources,omitempty"`
	Matrix   *MatrixSpec  `yaml:"matrix,omitempty"`
}

// MatrixSpec overrides the candidate values of one matrix parameter.
type MatrixSpec struct {
	Values    *yaml.Node `yaml:"values,omitempty"`
	Excluding *yaml.Node `yaml:"excluding,omitempty"`
	Method    string     `yaml:"method,omitempty"`
}

// PropertySpec declares an injected class property.
type PropertySpec struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type"`
	Static bool       `yaml:"static,omitempty"`
	Source SourceSpec `yaml:"source"`
}

// SourceSpec is one data source. Exactly one kind must be set.
type SourceSpec struct {
	Arguments *yaml.Node  `yaml:"arguments,omitempty"`
	Method    string      `yaml:"method,omitempty"`
	Instance  bool        `yaml:"instance,omitempty"`
	Range     *RangeSpec  `yaml:"range,omitempty"`
	Matrix    *MatrixRows `yaml:"matrix,omitempty"`
	Combined  bool        `yaml:"combined,omitempty"`
	Shared    []SharedRef `yaml:"shared,omitempty"`
	Empty     bool        `yaml:"empty,omitempty"`
}

// RangeSpec generates the integers from From to To inclusive.
type RangeSpec struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
	Step int `yaml:"step,omitempty"`
}

// MatrixRows configures a matrix source. Exclude lists full rows to drop.
type MatrixRows struct {
	Exclude *yaml.Node `yaml:"exclude,omitempty"`
}

// SharedRef requests one fixture per parameter.
type SharedRef struct {
	Fixture string `yaml:"fixture"`
	Scope   string `yaml:"scope,omitempty"`
	Key     string `yaml:"key,omitempty"`
}

// kinds lists the source kinds that are set.
func (s SourceSpec) kinds() []string {
	var set []string
	if s.Arguments != nil {
		set = append(set, "arguments")
	}
	if s.Method != "" {
		set = append(set, "method")
	}
	if s.Range != nil {
		set = append(set, "range")
	}
	if s.Matrix != nil {
		set = append(set, "matrix")
	}
	if s.Combined {
		set = append(set, "combined")
	}
	if len(s.Shared) > 0 {
		set = append(set, "shared")
	}
	if s.Empty {
		set = append(set, "empty")
	}
	return set
}
