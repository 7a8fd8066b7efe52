package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Error codes of LoadError.
const (
	ErrCodeRead       = "READ_FAILED"
	ErrCodeFormat     = "UNKNOWN_FORMAT"
	ErrCodeParse      = "PARSE_FAILED"
	ErrCodeNoTables   = "NO_TABLES"
	ErrCodeDefinition = "INVALID_DEFINITION"
)

// LoadError reports a definition file that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a .yaml, .yml or .cue definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	case ".cue":
		f, err = ParseCUE(data, path)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Path: path, Message: "want a .yaml, .yml or .cue file"}
	}
	if err != nil {
		if le, ok := err.(*LoadError); ok && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return f, nil
}

// ParseYAML decodes a YAML definition file.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error()}
	}
	return checkFile(&f)
}

// ParseCUE evaluates a CUE definition file and decodes it. The file may
// use CUE constraints and references; only the concrete result is read.
func ParseCUE(data []byte, filename string) (*File, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, formatCUEError(err)
	}
	return checkFile(&f)
}

func checkFile(f *File) (*File, error) {
	if len(f.Tables) == 0 {
		return nil, &LoadError{Code: ErrCodeNoTables, Message: "no tables defined"}
	}
	for i, t := range f.Tables {
		if t.Name == "" {
			return nil, &LoadError{Code: ErrCodeDefinition, Message: fmt.Sprintf("table %d has no name", i)}
		}
	}
	return f, nil
}

// formatCUEError keeps the position of the first CUE error.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeParse, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: ErrCodeParse, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
