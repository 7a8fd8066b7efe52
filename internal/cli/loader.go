package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/automodel/internal/compiler"
	"github.com/roach88/automodel/internal/registry"
	"github.com/roach88/automodel/internal/schema"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNoSchema     = "E002" // --schema not given
	ErrCodeSchemaRead   = "E003" // Schema file unreadable or unknown format
	ErrCodeSchemaParse  = "E004" // Schema file failed to parse or validate
	ErrCodeConfig       = "E005" // Compiler options invalid
	ErrCodeUnknownTable = "E006" // Table not declared in the schema
	ErrCodeNotFound     = "E007" // Path not found

	// Compilation
	ErrCodeDiagnostics = "E101" // One or more clauses failed
	ErrCodeProjection  = "E102" // Select or fuzzy column resolution failed

	// History
	ErrCodeHistory        = "E201" // History store failure
	ErrCodeRecordNotFound = "E202" // No record with the given id
)

// env is what the compile-style commands work with.
type env struct {
	file     *schema.File
	registry *registry.Registry
	compiler *compiler.Compiler
}

// loadEnv loads the compiler options and the schema file and builds a
// sealed registry with a compiler over it. extra options override the
// configuration. Errors are CLIErrors ready for output.
func loadEnv(opts *RootOptions, extra ...compiler.Option) (*env, *CLIError) {
	if opts.Schema == "" {
		return nil, &CLIError{Code: ErrCodeNoSchema, Message: "no schema file given (use --schema)"}
	}

	copts := compiler.DefaultOptions()
	if opts.Config != "" {
		loaded, err := compiler.LoadOptions(opts.Config)
		if err != nil {
			return nil, &CLIError{Code: ErrCodeConfig, Message: err.Error()}
		}
		copts = loaded
	}

	file, err := schema.Load(opts.Schema)
	if err != nil {
		return nil, schemaError(err)
	}

	reg := registry.New(append(copts.RegistryOptions(), registry.WithLogger(slog.Default()))...)
	if err := schema.Register(reg, file); err != nil {
		return nil, &CLIError{Code: ErrCodeSchemaParse, Message: err.Error()}
	}
	reg.Seal()

	copt := append([]compiler.Option{compiler.WithOptions(copts), compiler.WithLogger(slog.Default())}, extra...)
	c, err := compiler.New(reg, copt...)
	if err != nil {
		return nil, &CLIError{Code: ErrCodeConfig, Message: err.Error()}
	}
	return &env{file: file, registry: reg, compiler: c}, nil
}

// schemaError maps a schema load failure onto a CLI error code, keeping
// the source position when the loader reported one.
func schemaError(err error) *CLIError {
	var loadErr *schema.LoadError
	if !errors.As(err, &loadErr) {
		return &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	code := ErrCodeSchemaParse
	switch loadErr.Code {
	case schema.ErrCodeRead, schema.ErrCodeFormat:
		code = ErrCodeSchemaRead
	}
	cliErr := &CLIError{Code: code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		cliErr.Details = fmt.Sprintf("%s:%d:%d", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	return cliErr
}

// fail writes cliErr and returns a command-level ExitError.
func fail(f *OutputFormatter, cliErr *CLIError) error {
	return f.Fail(ExitCommandError, cliErr.Code, cliErr.Message, cliErr.Details)
}

// checkTable reports an unknown table as a CLIError.
func (e *env) checkTable(name string) *CLIError {
	if _, err := e.registry.Get(name); err != nil {
		return &CLIError{
			Code:    ErrCodeUnknownTable,
			Message: fmt.Sprintf("table %q is not declared in the schema", name),
			Details: e.registry.Tables(),
		}
	}
	return nil
}
