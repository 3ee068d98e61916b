package provider

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/langowen/converter/internal/conversion"
	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/internal/metrics"
	"github.com/pkg/errors"
)

const (
	NoticeOffline = "Using cached rates (offline mode)"
	NoticeFailed  = "Failed to load exchange rates"

	SourceCache = "cache"

	DefaultRefreshInterval = 5 * time.Minute
)

type Options struct {
	RefreshInterval time.Duration
	Timeout         time.Duration
}

// Provider keeps the current rate snapshot fresh by walking an ordered chain
// of remote sources and falling back to the local cache. It never returns
// errors; failures surface as State.Notice.
type Provider struct {
	sources []Source
	cache   Cache
	store   *Store
	opts    Options
	seq     atomic.Uint64

	cacheMu   sync.Mutex
	cachedSeq uint64
}

// New builds a provider over sources, tried in order. cache may be nil.
func New(sources []Source, cache Cache, opts Options) *Provider {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}

	return &Provider{
		sources: sources,
		cache:   cache,
		store:   NewStore(),
		opts:    opts,
	}
}

func (p *Provider) Current() State {
	return p.store.Current()
}

func (p *Provider) Subscribe() <-chan State {
	return p.store.Subscribe()
}

// Convert uses whatever snapshot is current; see conversion.Convert.
func (p *Provider) Convert(amount float64, from, to string) float64 {
	return conversion.Convert(amount, from, to, p.store.Current().Snapshot)
}

// Initialize shows the cached snapshot, if any, and then runs a full refresh.
func (p *Provider) Initialize(ctx context.Context) State {
	const op = "provider.Initialize"

	seq := p.seq.Add(1)

	if snap, err := p.loadCache(ctx); err == nil {
		p.store.Commit(State{
			Snapshot:  snap,
			Source:    SourceCache,
			Stale:     true,
			UpdatedAt: snap.Timestamp,
			Seq:       seq,
		})
		slog.Debug("Cached rates loaded", "op", op, "currencies", snap.Len())
	} else if !errors.Is(err, entities.ErrNoData) {
		slog.Error("Failed to load cached rates", "op", op, "error", err)
	}

	return p.Refresh(ctx)
}

// Refresh walks the source chain and applies the first snapshot it gets.
// Only a refresh that started after the applied one may replace it.
func (p *Provider) Refresh(ctx context.Context) State {
	const op = "provider.Refresh"

	start := time.Now()
	defer func() {
		metrics.ProviderRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	seq := p.seq.Add(1)

	for _, src := range p.sources {
		snap, err := p.fetch(ctx, src)
		if err != nil {
			metrics.ProviderSourceErrorsTotal.WithLabelValues(src.Name()).Inc()
			slog.Error("Rate source failed", "op", op, "source", src.Name(), "error", err)
			continue
		}

		applied := p.store.Commit(State{
			Snapshot:  snap,
			Source:    src.Name(),
			UpdatedAt: snap.Timestamp,
			Seq:       seq,
		})
		p.record(src.Name(), metrics.OutcomeFresh, applied)

		if applied {
			p.saveCache(ctx, seq, snap)
		}

		return p.store.Current()
	}

	snap, err := p.loadCache(ctx)
	if err == nil {
		applied := p.store.Commit(State{
			Snapshot:  snap,
			Source:    SourceCache,
			Notice:    NoticeOffline,
			Stale:     true,
			UpdatedAt: snap.Timestamp,
			Seq:       seq,
		})
		p.record(SourceCache, metrics.OutcomeStale, applied)
		slog.Warn("All remote sources failed, using cached rates", "op", op)

		return p.store.Current()
	}

	applied := p.store.Fail(seq, NoticeFailed)
	p.record("none", metrics.OutcomeFailed, applied)
	slog.Error("Failed to load exchange rates from any source", "op", op, "error", err)

	return p.store.Current()
}

// Start initializes the provider and refreshes it every RefreshInterval
// until ctx is done.
func (p *Provider) Start(ctx context.Context) <-chan struct{} {
	p.Initialize(ctx)

	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(p.opts.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.Refresh(ctx)
			case <-ctx.Done():
				slog.Info("Rate refresh stopped")
				return
			}
		}
	}()

	return done
}

// Listen refreshes on every value received from updates, such as ids of
// freshly ingested rows.
func (p *Provider) Listen(ctx context.Context, updates <-chan string) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			select {
			case id, ok := <-updates:
				if !ok {
					return
				}
				slog.Debug("Rates update announced", "id", id)
				p.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}

func (p *Provider) fetch(ctx context.Context, src Source) (*entities.RateSnapshot, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	snap, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Len() == 0 {
		return nil, entities.ErrNoData
	}

	return snap, nil
}

func (p *Provider) loadCache(ctx context.Context) (*entities.RateSnapshot, error) {
	if p.cache == nil {
		return nil, entities.ErrNoData
	}

	snap, err := p.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Len() == 0 {
		return nil, entities.ErrNoData
	}

	return snap, nil
}

// saveCache overwrites the cache with the snapshot applied by refresh seq.
// It does nothing once a newer refresh has been applied or cached, so the
// cache never holds rates the store has dropped.
func (p *Provider) saveCache(ctx context.Context, seq uint64, snap *entities.RateSnapshot) {
	const op = "provider.saveCache"

	if p.cache == nil {
		return
	}

	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if seq <= p.cachedSeq || p.store.Current().Seq != seq {
		return
	}

	if err := p.cache.Save(ctx, snap); err != nil {
		slog.Error("Failed to cache rates", "op", op, "error", err)
		return
	}
	p.cachedSeq = seq
}

func (p *Provider) record(source, outcome string, applied bool) {
	if !applied {
		outcome = metrics.OutcomeDropped
	}
	metrics.ProviderRefreshTotal.WithLabelValues(source, outcome).Inc()
}
