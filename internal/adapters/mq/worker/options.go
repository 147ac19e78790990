// Package worker defines the normalizer workers that drain the ingest
// queue into the entity catalog.
package worker

import (
	"github.com/marquee-live/marquee/pkg/logger"
)

// Option applies a configuration option to the NormalizeWorker.
type Option func(*NormalizeWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *NormalizeWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *NormalizeWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
