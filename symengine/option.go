package symengine

import "github.com/ardnew/symsubst/log"

// Option configures an [ExpressionMap].
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger receiving trace events for map operations.
// Without it the logger is zero-valued and logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(o *options, opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}
