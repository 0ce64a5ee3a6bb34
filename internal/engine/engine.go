// Package engine advances a world by discrete ticks.
//
// Each tick walks every actor's rule tree, matches rules against the stage
// around the actor, applies the actions of rules that match and records the
// mutations as animation frames. The engine holds no per-tick state; every
// call takes a world and returns a new one.
package engine

import (
	"os"

	"github.com/charmbracelet/log"
)

// DefaultHistorySize is the number of ticks kept for Untick.
const DefaultHistorySize = 20

// maxLoopCount bounds loop containers so a runaway variable cannot stall a
// tick.
const maxLoopCount = 1000

// Engine runs ticks. It is safe for concurrent use as long as its
// IDGenerator is.
type Engine struct {
	logger      *log.Logger
	historySize int
	ids         IDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings about missing lookups.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHistorySize sets how many ticks are kept for Untick.
// Values below 1 keep the default.
func WithHistorySize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historySize = n
		}
	}
}

// WithIDGenerator sets the generator for ids of created actors.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "tilerules",
			Level:  log.WarnLevel,
		}),
		historySize: DefaultHistorySize,
		ids:         UUIDs{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// HistorySize returns the configured history bound.
func (e *Engine) HistorySize() int {
	return e.historySize
}
