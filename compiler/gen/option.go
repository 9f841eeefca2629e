package gen

import (
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultOutput is the name of the file generated in every package.
const DefaultOutput = "sqlmodel_gen.go"

// Config configures the generator.
type Config struct {
	// Output is the base name of the generated file.
	Output string
	// Header is written below the generated code marker.
	Header string
	// Workers bounds the packages generated concurrently.
	Workers int
}

// Option configures the generator.
type Option func(*Config) error

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		Output:  DefaultOutput,
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithOutput sets the name of the generated file.
func WithOutput(name string) Option {
	return func(c *Config) error {
		switch {
		case name == "":
			return NewConfigError("Output", nil, "output cannot be empty")
		case filepath.Base(name) != name:
			return NewConfigError("Output", name, "output must be a file name, not a path")
		case !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go"):
			return NewConfigError("Output", name, "output must be a non-test .go file")
		}
		c.Output = name
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of packages generated concurrently.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}
