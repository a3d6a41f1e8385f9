package plugin

import (
	"log/slog"

	"musicmerge/internal/logging"
)

type options struct {
	registry *Registry
	text     TextEncoding
	logger   *slog.Logger
}

// Option customizes Decode, Encode and the file helpers.
type Option func(*options)

// WithRegistry selects the record codecs used for groups.
func WithRegistry(reg *Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.registry = reg
		}
	}
}

// WithTextEncoding selects how zstring payloads are converted.
func WithTextEncoding(enc TextEncoding) Option {
	return func(o *options) {
		if enc != nil {
			o.text = enc
		}
	}
}

// WithLogger routes codec diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		registry: DefaultRegistry(),
		text:     UTF8,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
