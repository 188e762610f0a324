package reconcile

import "log"

// Engine drives the dedup/upsert rules in §4.2 against a Store. It holds
// no state of its own; every decision is made from what the Store reports.
type Engine struct {
	store  Store
	logger *log.Logger
}

// NewEngine constructs a reconciliation Engine over the given Store. A nil
// logger falls back to the standard library's default logger, matching the
// teacher's convention in internal/service.
func NewEngine(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: store, logger: logger}
}
