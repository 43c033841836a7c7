package layout

import "log/slog"

// Option customizes a ForceLayout at construction.
type Option func(*ForceLayout)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(l *ForceLayout) {
		if log != nil {
			l.log = log
		}
	}
}

// WithRandom replaces the source derived from Settings.Seed.
func WithRandom(r Random) Option {
	return func(l *ForceLayout) {
		if r != nil {
			l.random = r
		}
	}
}
