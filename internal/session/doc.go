// Package session implements the Discovery Session Manager: it tracks the
// one running discovery per daemon, applies progress updates, and fans
// them out over SSE through internal/hub. Reconciling the discovered data
// itself is internal/reconcile's job; this package only tracks session
// lifecycle and progress.
package session
