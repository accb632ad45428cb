package naming

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
)

// Namespace is the UUID namespace of test identities.
var Namespace = uuid.MustParse("8f3c2a4e-51d7-4b0e-9a6f-3c1d2e7b9f40")

// Identity is everything that distinguishes one constructed test.
type Identity struct {
	Class       string
	Method      string
	ClassArgs   []any
	MethodArgs  []any
	ClassIndex  int
	MethodIndex int
	RepeatIndex int
	ParamNames  []string
	DisplayName string
}

// Key renders the identity string that the test ID is derived from.
func (id Identity) Key() string {
	return fmt.Sprintf("%s(%s).%s(%s)#%d.%d.%d",
		id.Class, FormatArgs(id.ClassArgs), id.Method, FormatArgs(id.MethodArgs),
		id.ClassIndex, id.MethodIndex, id.RepeatIndex)
}

// ID returns the stable test identifier.
func (id Identity) ID() string {
	return uuid.NewSHA1(Namespace, []byte(id.Key())).String()
}

// TemplateData is the data available to display-name templates.
type TemplateData struct {
	Class     string
	Method    string
	Args      []string
	ClassArgs []string
	Params    map[string]string
	Repeat    int
}

// Engine renders display names. Parsed templates are cached.
type Engine struct {
	mu    sync.Mutex
	cache map[string]*template.Template
}

// New creates a display-name engine.
func New() *Engine {
	return &Engine{cache: make(map[string]*template.Template)}
}

// DisplayName renders the display name of id.
func (e *Engine) DisplayName(id Identity) (string, error) {
	if id.DisplayName == "" {
		return id.Method + "(" + FormatArgs(id.MethodArgs) + ")", nil
	}

	tmpl, err := e.parse(id.DisplayName)
	if err != nil {
		return "", err
	}

	data := TemplateData{
		Class:     id.Class,
		Method:    id.Method,
		Args:      formatAll(id.MethodArgs),
		ClassArgs: formatAll(id.ClassArgs),
		Params:    make(map[string]string, len(id.ParamNames)),
		Repeat:    id.RepeatIndex,
	}
	for i, name := range id.ParamNames {
		if i < len(data.Args) {
			data.Params[name] = data.Args[i]
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering display name %q: %w", id.DisplayName, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (e *Engine) parse(text string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.cache[text]; ok {
		return t, nil
	}
	t, err := template.New("display-name").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing display name template %q: %w", text, err)
	}
	e.cache[text] = t
	return t, nil
}

func formatAll(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = FormatValue(a)
	}
	return out
}
