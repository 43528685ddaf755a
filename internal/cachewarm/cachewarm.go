// Package cachewarm periodically refreshes every store's configuration and
// first page so shoppers never pay for a cold cache.
package cachewarm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"storefront/internal/composition"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

// DefaultTimeout bounds one warm run.
const DefaultTimeout = 2 * time.Minute

// Refresher re-fetches a store config and overwrites the cached copy.
type Refresher interface {
	Refresh(ctx context.Context, code string) (*store.Config, error)
}

// Composer composes a storefront page.
type Composer interface {
	Compose(ctx context.Context, req composition.Request) (*composition.Page, error)
}

// Warmer warms the store config cache and each store's first page.
type Warmer struct {
	stores  []store.Descriptor
	configs Refresher
	pages   Composer
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Warmer. pages may be nil to warm configs only.
func New(stores []store.Descriptor, configs Refresher, pages Composer, m *metrics.Metrics, logger *slog.Logger) *Warmer {
	return &Warmer{
		stores:  stores,
		configs: configs,
		pages:   pages,
		timeout: DefaultTimeout,
		metrics: m,
		logger:  logger,
	}
}

// Run warms every store concurrently. Every store is attempted; the first
// failure is returned after all have finished.
func (w *Warmer) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	var g errgroup.Group
	for _, d := range w.stores {
		g.Go(func() error {
			if err := w.warmStore(ctx, d); err != nil {
				w.logger.WarnContext(ctx, "cache warm failed",
					slog.String("store", d.Code),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	w.metrics.CacheWarmed(err)
	w.logger.InfoContext(ctx, "cache warm finished",
		slog.Int("stores", len(w.stores)),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	return err
}

func (w *Warmer) warmStore(ctx context.Context, d store.Descriptor) error {
	if _, err := w.configs.Refresh(ctx, d.Code); err != nil {
		return fmt.Errorf("store %s config: %w", d.Code, err)
	}
	if w.pages == nil {
		return nil
	}
	if _, err := w.pages.Compose(ctx, composition.Request{Path: d.BaseName + "/"}); err != nil {
		return fmt.Errorf("store %s first page: %w", d.Code, err)
	}
	return nil
}

// Start schedules Run on a cron spec such as "@every 15m" and returns a stop
// function that waits for a running warm to finish. Overlapping runs are
// skipped.
func (w *Warmer) Start(ctx context.Context, spec string) (stop func(), err error) {
	logger := cronLogger{w.logger}
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := c.AddFunc(spec, func() {
		// failures are logged and counted in Run
		_ = w.Run(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid cache warm schedule %q: %w", spec, err)
	}
	c.Start()
	w.logger.Info("cache warmer scheduled", slog.String("schedule", spec))

	return func() {
		<-c.Stop().Done()
	}, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
