package compiler

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/automodel/internal/classify"
	"github.com/roach88/automodel/internal/convert"
	"github.com/roach88/automodel/internal/exprgen"
	"github.com/roach88/automodel/internal/registry"
)

// Options is the file form of the compiler configuration.
type Options struct {
	// Strategy is "implicit" (default) or "lambda".
	Strategy string `yaml:"strategy"`

	// Parameters emits @n placeholders instead of inline literals.
	Parameters bool `yaml:"parameters"`

	MultiSeparator string `yaml:"multi_separator"`
	LikeFunction   string `yaml:"like_function"`
	ExpLikeTokens  string `yaml:"explike_tokens"`

	// CaseInsensitive applies to the registry the compiler is built over.
	CaseInsensitive bool `yaml:"case_insensitive"`
}

// DefaultOptions returns the defaults used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Strategy:       exprgen.StrategyImplicit,
		MultiSeparator: classify.DefaultSeparator,
		LikeFunction:   exprgen.DefaultLikeFunction,
		ExpLikeTokens:  exprgen.DefaultExpLikeTokens,
	}
}

// LoadOptions reads options from a YAML file. Missing keys keep their defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := exprgen.StrategyByName(opts.Strategy); err != nil {
		return opts, fmt.Errorf("config %s: %w", path, err)
	}
	return opts, nil
}

// RegistryOptions returns the registry options implied by o.
func (o Options) RegistryOptions() []registry.Option {
	var out []registry.Option
	if o.CaseInsensitive {
		out = append(out, registry.WithCaseInsensitive())
	}
	return out
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithOptions applies a loaded configuration. Options given after it
// override individual settings.
func WithOptions(o Options) Option {
	return func(c *Compiler) {
		if o.Strategy != "" {
			c.strategyName = o.Strategy
			c.strategy = nil
		}
		c.parameters = o.Parameters
		if o.MultiSeparator != "" {
			c.separator = o.MultiSeparator
		}
		if o.LikeFunction != "" {
			c.likeFunction = o.LikeFunction
		}
		if o.ExpLikeTokens != "" {
			c.expLikeTokens = o.ExpLikeTokens
		}
	}
}

// WithStrategy selects the quantifier strategy.
func WithStrategy(s exprgen.Strategy) Option {
	return func(c *Compiler) {
		c.strategy = s
	}
}

// WithParameters switches between @n placeholders and inline literals.
func WithParameters(enabled bool) Option {
	return func(c *Compiler) {
		c.parameters = enabled
	}
}

// WithMultiSeparator sets the separator of multi-valued in clauses.
func WithMultiSeparator(sep string) Option {
	return func(c *Compiler) {
		c.separator = sep
	}
}

// WithLikeFunction sets the function emitted for like matches.
func WithLikeFunction(name string) Option {
	return func(c *Compiler) {
		c.likeFunction = name
	}
}

// WithExpLikeTokens restricts the operator characters of explike patterns.
func WithExpLikeTokens(tokens string) Option {
	return func(c *Compiler) {
		c.expLikeTokens = tokens
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithClock sets the clock relative dates resolve against.
func WithClock(clock convert.Clock) Option {
	return func(c *Compiler) {
		c.clock = clock
	}
}
