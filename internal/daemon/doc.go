// Package daemon implements the discovery pipeline that runs on each
// NetVisor daemon: target enumeration, liveness-ordered scanning, per-host
// TCP/UDP probing, and progress reporting back to the server.
//
// A Pipeline owns no state between runs; each call to Run enumerates
// targets, probes them with a bounded-concurrency combinator, and reports
// through a Reporter. Session bookkeeping (one Running session per daemon)
// lives in internal/session, not here — the pipeline only reports into it.
package daemon
