package daemon

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"netvisor/internal/domain"
	"netvisor/internal/reconcile"
)

// DefaultConcurrentScans is the concurrent_scans configuration default
// (§6.3).
const DefaultConcurrentScans = 15

// progressThreshold is the minimum advance in either counter before a
// periodic progress update is posted (§4.1 periodic_scan_update).
const progressThreshold = 20

// Reporter is the daemon's channel back to the server: one call per
// discovered host, plus throttled progress updates. Implementations POST
// to the server's /api/discovery/update endpoint; see internal/handler for
// the server side.
type Reporter interface {
	ReportFragment(ctx context.Context, sessionID string, fragment *domain.DiscoveryFragment) error
	ReportProgress(ctx context.Context, sessionID string, progress domain.Progress) error
}

// Pipeline runs one discovery session to completion: enumerate targets,
// probe them with bounded concurrency, and report fragments and progress
// as they're produced.
type Pipeline struct {
	Concurrency int
	Catalogue   []reconcile.ServiceCatalogueEntry
	Reporter    Reporter
}

// NewPipeline builds a Pipeline with the default catalogue and concurrency.
func NewPipeline(reporter Reporter, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultConcurrentScans
	}
	return &Pipeline{
		Concurrency: concurrency,
		Catalogue:   reconcile.DefaultCatalogue,
		Reporter:    reporter,
	}
}

// Run enumerates targets for the session's discovery type and scans them
// with bounded concurrency (§4.1, §5). Emission follows scan order;
// completion order is arbitrary. The first cancellation or subnet
// enumeration failure is returned; individual host probe/report failures
// are logged and do not abort the session.
func (p *Pipeline) Run(ctx context.Context, session *domain.DiscoverySession, networkID string) error {
	targets, err := EnumerateTargets(session.DiscoveryType, networkID)
	if err != nil {
		return err
	}

	total := len(targets)
	tracker := newProgressTracker(session.SessionID, total, p.Reporter)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Concurrency)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			return p.scanOne(gctx, target, networkID, session.DaemonID, tracker)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	tracker.flush(ctx)
	return nil
}

// scanOne probes a single target and reports its result. A cancellation
// observed by scanHost is propagated to stop the group; every other
// failure (probe error, reconciliation POST failure) is logged and
// swallowed so one bad host doesn't abort the session.
func (p *Pipeline) scanOne(ctx context.Context, target Target, networkID, daemonID string, tracker *progressTracker) error {
	outcome, err := scanHost(ctx, target, daemonID, p.Catalogue)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			tracker.countScanned(ctx)
			return err
		}
		log.Printf("daemon: probe %s failed: %v", target.IP, err)
		tracker.countScanned(ctx)
		return nil
	}

	if outcome.Cancelled {
		tracker.countScanned(ctx)
		return domain.ErrCancelled
	}
	if outcome.NoHost {
		tracker.countScanned(ctx)
		return nil
	}

	fragment := domain.NewDiscoveryFragment()
	fragment.Hosts = append(fragment.Hosts, outcome.Host)
	fragment.Services = append(fragment.Services, outcome.Services...)
	fragment.Subnets = append(fragment.Subnets, domain.NewSubnet(
		target.SubnetID, target.SubnetCIDR, networkID, target.SubnetType,
		domain.DiscoverySource(discoveryTypeForSubnet(target.SubnetType), daemonID, "", outcome.Host.CreatedAt),
		target.SubnetCIDR,
	))

	if p.Reporter != nil {
		if err := p.Reporter.ReportFragment(ctx, tracker.sessionID, fragment); err != nil {
			log.Printf("daemon: report %s failed: %v", target.IP, err)
			tracker.countScanned(ctx)
			return nil
		}
	}

	tracker.countDiscovered(ctx)
	return nil
}

// progressTracker holds the monotonic scanned/discovered counters for one
// session and throttles progress reports to the threshold the spec sets
// (§4.1: report iff either counter has advanced by at least 20 since the
// last report).
type progressTracker struct {
	sessionID string
	total     int
	reporter  Reporter

	scanned    atomic.Int64
	discovered atomic.Int64

	mu                  sync.Mutex
	lastReportedScanned int64
	lastReportedDisc    int64
}

func newProgressTracker(sessionID string, total int, reporter Reporter) *progressTracker {
	return &progressTracker{sessionID: sessionID, total: total, reporter: reporter}
}

func (t *progressTracker) countScanned(ctx context.Context) {
	t.scanned.Add(1)
	t.maybeReport(ctx)
}

func (t *progressTracker) countDiscovered(ctx context.Context) {
	t.scanned.Add(1)
	t.discovered.Add(1)
	t.maybeReport(ctx)
}

func (t *progressTracker) maybeReport(ctx context.Context) {
	scanned := t.scanned.Load()
	discovered := t.discovered.Load()

	t.mu.Lock()
	advanced := scanned-t.lastReportedScanned >= progressThreshold || discovered-t.lastReportedDisc >= progressThreshold
	if advanced {
		t.lastReportedScanned = scanned
		t.lastReportedDisc = discovered
	}
	t.mu.Unlock()

	if !advanced || t.reporter == nil {
		return
	}
	t.report(ctx, scanned, discovered)
}

// flush reports the final counters unconditionally, so a session's last
// few hosts aren't left under the last-reported threshold forever.
func (t *progressTracker) flush(ctx context.Context) {
	if t.reporter == nil {
		return
	}
	t.report(ctx, t.scanned.Load(), t.discovered.Load())
}

func (t *progressTracker) report(ctx context.Context, scanned, discovered int64) {
	if err := t.reporter.ReportProgress(ctx, t.sessionID, domain.Progress{
		Phase:           domain.PhaseScanning,
		ScannedCount:    int(scanned),
		Total:           t.total,
		DiscoveredCount: int(discovered),
	}); err != nil {
		log.Printf("daemon: progress report failed: %v", err)
	}
}
