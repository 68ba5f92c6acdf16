package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"github.com/go-playground/validator/v10"
)

// schema constrains configuration files before decoding. Unknown fields
// and out-of-range values fail here with source positions.
const schema = `
#Config: {
	facts?: {
		blocklist?: [...string]
		custom_dirs?: [...string]
		external_dirs?: [...string]
		no_custom_facts?: bool
	}
	cache?: {
		enabled?: bool
		path?: string
		group_ttls?: {[string]: string | number}
	}
	framework?: {
		root?: string
	}
	telemetry?: {
		log_level?: "trace" | "debug" | "info" | "warn" | "error" | "fatal"
		log_format?: "console" | "json"
		metrics_address?: string
		tracing_enabled?: bool
	}
}
`

// Loader parses and validates CUE configuration files.
type Loader struct {
	ctx       *cue.Context
	schema    cue.Value
	validator *validator.Validate
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}

	return &Loader{
		ctx:       ctx,
		schema:    schemaVal.LookupPath(cue.ParsePath("#Config")),
		validator: validator.New(),
	}, nil
}

// Load reads, validates, and decodes a configuration file. A missing
// file is not an error; the defaults apply.
func (l *Loader) Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return l.LoadBytes(content, path)
}

// LoadBytes validates and decodes inline CUE configuration content.
func (l *Loader) LoadBytes(content []byte, filename string) (*Config, error) {
	val := l.ctx.CompileBytes(content, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, firstValidationError(err)
	}

	unified := l.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, firstValidationError(err)
	}

	cfg := Default()
	if err := unified.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(cfg)

	if err := l.validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills fields the file left empty.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaults.Cache.Path
	}
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = defaults.Telemetry.LogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = defaults.Telemetry.LogFormat
	}
	if cfg.Telemetry.MetricsAddress == "" {
		cfg.Telemetry.MetricsAddress = defaults.Telemetry.MetricsAddress
	}
}

// firstValidationError converts a CUE error into a ValidationError
// carrying the first source position.
func firstValidationError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	e := errs[0]
	ve := ValidationError{
		Message:  errors.Details(e, nil),
		Severity: "error",
	}
	if pos := errors.Positions(e); len(pos) > 0 {
		p := pos[0]
		for _, cand := range pos {
			if cand.Filename() != "" {
				p = cand
				break
			}
		}
		ve.File = p.Filename()
		ve.Line = p.Line()
		ve.Column = p.Column()
	}
	return ve
}
