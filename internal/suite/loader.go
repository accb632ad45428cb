package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"testwright/internal/model"
	"testwright/internal/types"
	"testwright/pkg/logging"
)

const subsystem = "SuiteLoader"

// Suite is a loaded set of suite files.
type Suite struct {
	Files    []string
	Universe *types.Universe
	Classes  []*model.Class
	Methods  []*model.Method
	Journal  *Journal

	mu      sync.Mutex
	statics map[string]any
}

// Static returns the value injected into a static property.
func (s *Suite) Static(class, property string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.statics[class+"."+property]
	return v, ok
}

func (s *Suite) setStatic(class, property string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statics[class+"."+property] = v
}

// Load loads a suite file, or every *.yaml and *.yml file below a
// directory.
func Load(path string) (*Suite, error) {
	files, err := Discover(path)
	if err != nil {
		return nil, err
	}
	return LoadFiles(files...)
}

// Discover returns the suite files at path in lexical order.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("suite path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSuiteFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no suite files found in %s", path)
	}
	logging.Debug(subsystem, "found %d suite files in %s", len(files), path)
	return files, nil
}

// IsSuiteFile reports whether path has a suite file extension.
func IsSuiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFiles loads and links the given suite files. All problems found are
// returned together as a *SuiteErrorCollection.
func LoadFiles(paths ...string) (*Suite, error) {
	errs := &SuiteErrorCollection{}
	var files []*File
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			errs.Add(SuiteError{FilePath: p, Category: CategoryFile, ErrorType: ErrorTypeIO, Message: err.Error()})
			continue
		}
		f, err := Parse(p, data)
		if err != nil {
			errs.Add(SuiteError{FilePath: p, Category: CategoryFile, ErrorType: ErrorTypeParse, Message: err.Error()})
			continue
		}
		files = append(files, f)
	}
	if errs.HasErrors() {
		return nil, errs
	}

	s, err := compile(files)
	if err != nil {
		return nil, err
	}
	s.Files = append([]string(nil), paths...)
	logging.Info(subsystem, "loaded %d classes and %d methods from %d files", len(s.Classes), len(s.Methods), len(paths))
	return s, nil
}

// Parse decodes one suite file. Unknown fields are rejected.
func Parse(path string, data []byte) (*File, error) {
	f := &File{path: path}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	f.path = path
	if f.Assembly == "" {
		f.Assembly = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	annotateLines(f, &root)
	return f, nil
}

func annotateLines(f *File, root *yaml.Node) {
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	classes := mappingValue(root, "classes")
	if classes == nil || classes.Kind != yaml.SequenceNode {
		return
	}
	for i, c := range classes.Content {
		if i >= len(f.Classes) {
			return
		}
		f.Classes[i].Line = c.Line
		methods := mappingValue(c, "methods")
		if methods == nil || methods.Kind != yaml.SequenceNode {
			continue
		}
		for j, m := range methods.Content {
			if j < len(f.Classes[i].Methods) {
				f.Classes[i].Methods[j].Line = m.Line
			}
		}
	}
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
