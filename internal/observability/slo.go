package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type SLOConfig struct {
	Enabled  bool
	Interval time.Duration
	Window   time.Duration

	APIAvailabilityTarget   float64
	APILatencyTarget        float64
	GenerationSuccessTarget float64

	AlertWebhook     string
	AlertOwner       string
	AlertRunbook     string
	AlertMinInterval time.Duration
	AlertBurnWarn    float64
	AlertBurnCrit    float64
}

// apiLatencyGoodSeconds is the threshold a request must beat to count toward
// the latency SLO. Generation calls are excluded; they wait on the model.
const apiLatencyGoodSeconds = 0.5

type rollingSum struct {
	values []float64
	idx    int
	total  float64
}

func newRollingSum(size int) *rollingSum {
	if size < 1 {
		size = 1
	}
	return &rollingSum{values: make([]float64, size)}
}

func (r *rollingSum) add(v float64) {
	r.total += v - r.values[r.idx]
	r.values[r.idx] = v
	r.idx++
	if r.idx >= len(r.values) {
		r.idx = 0
	}
}

type SLOEvaluator struct {
	metrics *Metrics
	log     *logger.Logger
	cfg     SLOConfig
	client  *http.Client

	windowLabel string

	apiTotal *rollingSum
	apiError *rollingSum
	apiGood  *rollingSum
	genTotal *rollingSum
	genError *rollingSum

	prevAPITotal float64
	prevAPIError float64
	prevAPIGood  float64
	prevGenTotal float64
	prevGenError float64

	alertMu    sync.Mutex
	lastAlerts map[string]time.Time
}

func (m *Metrics) StartSLOEvaluator(ctx context.Context, log *logger.Logger, cfg SLOConfig) {
	if m == nil || !cfg.Enabled {
		return
	}
	eval := newSLOEvaluator(m, log, cfg)
	go eval.run(ctx)
	if log != nil {
		log.Info("SLO evaluator started", "window", eval.windowLabel, "interval", eval.cfg.Interval.String())
	}
}

func newSLOEvaluator(m *Metrics, log *logger.Logger, cfg SLOConfig) *SLOEvaluator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window < time.Hour {
		cfg.Window = 24 * time.Hour
	}
	if cfg.AlertMinInterval <= 0 {
		cfg.AlertMinInterval = 15 * time.Minute
	}
	if cfg.AlertBurnWarn <= 0 {
		cfg.AlertBurnWarn = 2
	}
	if cfg.AlertBurnCrit <= 0 {
		cfg.AlertBurnCrit = 10
	}
	cfg.APIAvailabilityTarget = clamp01(cfg.APIAvailabilityTarget)
	cfg.APILatencyTarget = clamp01(cfg.APILatencyTarget)
	cfg.GenerationSuccessTarget = clamp01(cfg.GenerationSuccessTarget)
	cfg.AlertWebhook = strings.TrimSpace(cfg.AlertWebhook)
	cfg.AlertOwner = strings.TrimSpace(cfg.AlertOwner)

	size := int(cfg.Window / cfg.Interval)
	return &SLOEvaluator{
		metrics:     m,
		log:         log,
		cfg:         cfg,
		client:      &http.Client{Timeout: 5 * time.Second},
		windowLabel: formatWindowLabel(cfg.Window),
		apiTotal:    newRollingSum(size),
		apiError:    newRollingSum(size),
		apiGood:     newRollingSum(size),
		genTotal:    newRollingSum(size),
		genError:    newRollingSum(size),
		lastAlerts:  map[string]time.Time{},
	}
}

func (e *SLOEvaluator) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.evaluate(ctx)
		}
	}
}

func (e *SLOEvaluator) evaluate(ctx context.Context) {
	if e.metrics == nil {
		return
	}
	apiTotal := e.metrics.sloAPITotal.Value()
	apiError := e.metrics.sloAPIError.Value()
	apiGood := e.metrics.sloAPIFast.Value()
	genTotal := e.metrics.sloGenTotal.Value()
	genError := e.metrics.sloGenError.Value()

	e.apiTotal.add(delta(apiTotal, e.prevAPITotal))
	e.apiError.add(delta(apiError, e.prevAPIError))
	e.apiGood.add(delta(apiGood, e.prevAPIGood))
	e.genTotal.add(delta(genTotal, e.prevGenTotal))
	e.genError.add(delta(genError, e.prevGenError))

	e.prevAPITotal = apiTotal
	e.prevAPIError = apiError
	e.prevAPIGood = apiGood
	e.prevGenTotal = genTotal
	e.prevGenError = genError

	e.evalSLO(ctx, "api_availability", e.apiTotal.total, e.apiError.total, e.cfg.APIAvailabilityTarget)
	e.evalSLO(ctx, "api_latency", e.apiTotal.total, e.apiTotal.total-e.apiGood.total, e.cfg.APILatencyTarget)
	e.evalSLO(ctx, "generation_success", e.genTotal.total, e.genError.total, e.cfg.GenerationSuccessTarget)
}

func (e *SLOEvaluator) evalSLO(ctx context.Context, name string, total float64, bad float64, target float64) {
	if total <= 0 {
		e.metrics.sloCompliance.Set(1, name, e.windowLabel)
		e.metrics.sloBudget.Set(1, name, e.windowLabel)
		e.metrics.sloBurn.Set(0, name, e.windowLabel)
		return
	}
	sli := clamp01(1 - bad/total)
	burn := 0.0
	if target < 1 {
		burn = (1 - sli) / (1 - target)
	}
	budget := clamp01(1 - burn)
	e.metrics.sloCompliance.Set(sli, name, e.windowLabel)
	e.metrics.sloBudget.Set(budget, name, e.windowLabel)
	e.metrics.sloBurn.Set(burn, name, e.windowLabel)

	if e.cfg.AlertWebhook == "" || e.cfg.AlertOwner == "" {
		return
	}
	severity := ""
	if burn >= e.cfg.AlertBurnCrit {
		severity = "critical"
	} else if burn >= e.cfg.AlertBurnWarn {
		severity = "warning"
	}
	if severity == "" {
		return
	}
	key := name + ":" + severity
	e.alertMu.Lock()
	last := e.lastAlerts[key]
	if !last.IsZero() && time.Since(last) < e.cfg.AlertMinInterval {
		e.alertMu.Unlock()
		return
	}
	e.lastAlerts[key] = time.Now()
	e.alertMu.Unlock()
	e.sendAlert(ctx, name, severity, sli, target, burn, budget)
}

func (e *SLOEvaluator) sendAlert(ctx context.Context, name, severity string, sli, target, burn, budget float64) {
	payload := map[string]any{
		"title":                  "SLO burn rate alert",
		"severity":               severity,
		"owner":                  e.cfg.AlertOwner,
		"slo":                    name,
		"window":                 e.windowLabel,
		"sli":                    sli,
		"target":                 target,
		"burn_rate":              burn,
		"error_budget_remaining": budget,
		"runbook":                e.cfg.AlertRunbook,
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.AlertWebhook, bytes.NewReader(body))
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert request build failed", "error", err, "slo", name)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert post failed", "error", err, "slo", name)
		}
		return
	}
	_ = resp.Body.Close()
	if e.log != nil {
		e.log.Info("slo alert sent", "slo", name, "severity", severity, "status", resp.StatusCode)
	}
}

// delta treats a decrease as a counter reset.
func delta(current, prev float64) float64 {
	if current < prev {
		return current
	}
	return current - prev
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatWindowLabel(window time.Duration) string {
	hours := window.Hours()
	if hours >= 24 && int(hours)%24 == 0 && hours == float64(int(hours)) {
		return strconv.Itoa(int(hours/24)) + "d"
	}
	if hours >= 1 {
		return strconv.Itoa(int(hours)) + "h"
	}
	return strconv.Itoa(int(window.Minutes())) + "m"
}
