package ingest

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/internal/metrics"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Base           string
	CryptoCode     string
	CryptoFallback float64
	Timeout        time.Duration
}

type Ingestor struct {
	storage Storage
	fiat    FiatClient
	crypto  CryptoClient
	redis   RedisStorage
	opts    Options
}

// NewIngestor accepts a nil redis; publishing and caching are then skipped.
func NewIngestor(storage Storage, fiat FiatClient, crypto CryptoClient, redis RedisStorage, opts Options) *Ingestor {
	return &Ingestor{
		storage: storage,
		fiat:    fiat,
		crypto:  crypto,
		redis:   redis,
		opts:    opts,
	}
}

// Ingest fetches the fiat table and the crypto rate, stores the merged
// snapshot as a new row and announces it. Only a fiat or storage failure
// fails the run.
func (i *Ingestor) Ingest(ctx context.Context) (*entities.IngestResult, error) {
	const op = "ingest.Ingest"

	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := i.ingest(ctx)
	if err != nil {
		metrics.IngestRunsTotal.WithLabelValues(metrics.ResultError).Inc()
		slog.Error("Rate ingestion failed", "op", op, "error", err)
		return nil, errors.Wrap(err, op)
	}

	metrics.IngestRunsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	if result.CryptoFallback {
		metrics.IngestCryptoFallbackTotal.Inc()
	}

	slog.Info("Rates ingested",
		"id", result.Snapshot.ID,
		"currencies", result.Snapshot.Len(),
		"crypto_fallback", result.CryptoFallback,
	)

	return result, nil
}

func (i *Ingestor) ingest(ctx context.Context) (*entities.IngestResult, error) {
	if i.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.opts.Timeout)
		defer cancel()
	}

	var (
		fiat        *entities.FiatTable
		cryptoRate  float64
		usedDefault bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, err := i.fiat.FetchFiat(gctx, i.opts.Base)
		if err != nil {
			return err
		}
		fiat = table
		return nil
	})

	g.Go(func() error {
		rate, err := i.crypto.FetchRate(gctx, i.opts.Base, i.opts.CryptoCode)
		if err != nil || !usable(rate) {
			slog.Warn("Crypto rate unavailable, using fallback",
				"code", i.opts.CryptoCode,
				"fallback", i.opts.CryptoFallback,
				"rate", rate,
				"error", err,
			)
			rate = i.opts.CryptoFallback
			usedDefault = true
		}
		cryptoRate = rate
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(fiat.Rates)+1)
	for code, rate := range fiat.Rates {
		rates[code] = rate
	}
	rates[i.opts.CryptoCode] = cryptoRate

	snap, err := entities.NewSnapshot(i.opts.Base, rates, time.Time{})
	if err != nil {
		return nil, err
	}

	saved, err := i.storage.SaveSnapshot(ctx, snap)
	if err != nil {
		return nil, err
	}

	i.announce(ctx, saved)

	return &entities.IngestResult{
		Snapshot:       saved,
		UpstreamUnix:   fiat.UpdatedUnix,
		CryptoFallback: usedDefault,
	}, nil
}

func (i *Ingestor) announce(ctx context.Context, snap *entities.RateSnapshot) {
	const op = "ingest.announce"

	if i.redis == nil {
		return
	}

	if err := i.redis.SetLatest(ctx, snap); err != nil {
		slog.Error("Failed to cache latest rates", "op", op, "error", err)
	}

	if err := i.redis.PublishUpdated(ctx, snap.ID); err != nil {
		slog.Error("Failed to publish rates update", "op", op, "id", snap.ID, "error", err)
	}
}

// StartScheduler runs Ingest every interval until ctx is done. A zero
// interval disables it; the returned channel is then already closed.
func (i *Ingestor) StartScheduler(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := i.Ingest(ctx); err != nil {
					slog.Error("Scheduled ingestion failed", "error", err)
				}
			case <-ctx.Done():
				slog.Info("Ingestion scheduler stopped")
				return
			}
		}
	}()

	return done
}

// usable reports whether an upstream crypto quote can be stored as is.
func usable(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0)
}
