package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"churn-insights-go/internal/logger"
	"churn-insights-go/internal/viewmodel"
)

const defaultRefreshInterval = 30 * time.Second

// Refresher re-runs the dashboard load on a fixed interval and hands each
// snapshot to the subscriber. It is an explicit handle: Start begins the
// loop, Stop cancels it and waits until no further deliveries can happen,
// so a torn-down view never gets updates from an orphaned timer.
type Refresher struct {
	loader   *Loader
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	log    *logrus.Entry
}

func NewRefresher(loader *Loader, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Refresher{
		loader:   loader,
		interval: interval,
		log:      logger.NewComponent("dashboard.refresher"),
	}
}

// Start loads once immediately, then on every tick. Calling Start on a
// running refresher is a no-op.
func (r *Refresher) Start(ctx context.Context, deliver func(viewmodel.DashboardSnapshot)) {
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		deliver(r.loader.Snapshot(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := r.loader.Snapshot(ctx)
				if ctx.Err() != nil {
					return
				}
				deliver(snap)
			}
		}
	}()
	r.log.WithField("interval", r.interval.String()).Info("refresher started")
}

// Stop cancels the loop and blocks until it has fully exited.
func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.log.Info("refresher stopped")
}
