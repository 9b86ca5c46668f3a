package dashboard

import (
	"context"

	"github.com/sirupsen/logrus"

	"churn-insights-go/internal/logger"
	"churn-insights-go/internal/prediction"
	"churn-insights-go/internal/types"
	"churn-insights-go/internal/viewmodel"
)

const defaultSampleSize = 5

// Loader assembles view models by fanning out independent API calls and
// joining the results. The join is all-or-nothing: if any leg fails, the
// whole load is treated as failed and the tagged fallback is substituted.
type Loader struct {
	svc        prediction.Service
	sampleSize int
	log        *logrus.Entry
}

func NewLoader(svc prediction.Service, sampleSize int) *Loader {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	return &Loader{
		svc:        svc,
		sampleSize: sampleSize,
		log:        logger.NewComponent("dashboard.loader"),
	}
}

// Snapshot loads analytics and the recent-prediction sample in parallel.
// Never returns an undefined view: on failure the caller gets the fallback
// snapshot with Source set to "fallback".
func (l *Loader) Snapshot(ctx context.Context) viewmodel.DashboardSnapshot {
	type analyticsResult struct {
		a   types.AnalyticsResponse
		err error
	}
	type historyResult struct {
		h   types.PredictionHistory
		err error
	}
	aCh := make(chan analyticsResult, 1)
	hCh := make(chan historyResult, 1)
	go func() {
		a, err := l.svc.Analytics(ctx)
		aCh <- analyticsResult{a, err}
	}()
	go func() {
		h, err := l.svc.History(ctx, l.sampleSize, 0)
		hCh <- historyResult{h, err}
	}()
	ar := <-aCh
	hr := <-hCh
	if ar.err != nil || hr.err != nil {
		l.log.WithFields(logrus.Fields{
			"analytics_err": errString(ar.err),
			"history_err":   errString(hr.err),
		}).Warn("dashboard load failed, serving fallback")
		return viewmodel.FallbackDashboard()
	}
	return viewmodel.BuildDashboard(ar.a, hr.h.Predictions)
}

// AnalyticsOverview joins aggregate analytics with model metrics for the
// analytics page, with the same all-or-nothing fallback policy.
func (l *Loader) AnalyticsOverview(ctx context.Context) viewmodel.AnalyticsOverview {
	type analyticsResult struct {
		a   types.AnalyticsResponse
		err error
	}
	type metricsResult struct {
		m   types.ModelMetricsResponse
		err error
	}
	aCh := make(chan analyticsResult, 1)
	mCh := make(chan metricsResult, 1)
	go func() {
		a, err := l.svc.Analytics(ctx)
		aCh <- analyticsResult{a, err}
	}()
	go func() {
		m, err := l.svc.ModelMetrics(ctx)
		mCh <- metricsResult{m, err}
	}()
	ar := <-aCh
	mr := <-mCh
	if ar.err != nil || mr.err != nil {
		l.log.WithFields(logrus.Fields{
			"analytics_err": errString(ar.err),
			"metrics_err":   errString(mr.err),
		}).Warn("analytics overview load failed, serving fallback")
		return viewmodel.FallbackAnalyticsOverview()
	}
	return viewmodel.BuildAnalyticsOverview(ar.a, mr.m)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
