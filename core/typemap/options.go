package typemap

import (
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Option configures a Map or FlightMap.
type Option func(*options)

type options struct {
	name    string
	log     *slog.Logger
	metrics Metrics
}

// WithName sets the map name used in log fields and metric labels.
// Defaults to a generated "typemap-<id>" name.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger for debug output on first-time
// initializations. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics sets the metrics implementation. Defaults to no-op.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func newOptions(opts []Option) options {
	o := options{metrics: NopMetrics()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("typemap-%s", gonanoid.Must(6))
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}
