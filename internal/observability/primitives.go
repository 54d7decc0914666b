package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Lightweight metric primitives rendered in the Prometheus text format.

func writeHeader(w io.Writer, name, help, kind string) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, help); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

// labeledValues backs CounterVec and GaugeVec.
type labeledValues struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func (l *labeledValues) update(fn func(cur float64) float64, values []string) {
	lbl := labelString(l.labelNames, values)
	l.mu.Lock()
	l.values[lbl] = fn(l.values[lbl])
	l.mu.Unlock()
}

func (l *labeledValues) get(values ...string) float64 {
	lbl := labelString(l.labelNames, values)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.values[lbl]
}

func (l *labeledValues) write(w io.Writer, kind string) error {
	if err := writeHeader(w, l.name, l.help, kind); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", l.name, k, l.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct {
	labeledValues
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{labeledValues{name: name, help: help, labelNames: labels, values: map[string]float64{}}}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	c.update(func(cur float64) float64 { return cur + v }, values)
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(values...)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.write(w, "counter")
}

type GaugeVec struct {
	labeledValues
}

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{labeledValues{name: name, help: help, labelNames: labels, values: map[string]float64{}}}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.update(func(float64) float64 { return v }, values)
}

func (g *GaugeVec) Value(values ...string) float64 {
	if g == nil {
		return 0
	}
	return g.get(values...)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.write(w, "gauge")
}

type scalar struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func (s *scalar) apply(fn func(float64) float64) {
	s.mu.Lock()
	s.val = fn(s.val)
	s.mu.Unlock()
}

func (s *scalar) write(w io.Writer, kind string) error {
	if err := writeHeader(w, s.name, s.help, kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := fmt.Fprintf(w, "%s %g\n", s.name, s.val)
	return err
}

type Counter struct {
	scalar
}

func NewCounter(name, help string) *Counter {
	return &Counter{scalar{name: name, help: help}}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(v float64) {
	if c == nil {
		return
	}
	c.apply(func(cur float64) float64 { return cur + v })
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.write(w, "counter")
}

type Gauge struct {
	scalar
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{scalar{name: name, help: help}}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.apply(func(float64) float64 { return v })
}

func (g *Gauge) Inc() {
	if g == nil {
		return
	}
	g.apply(func(cur float64) float64 { return cur + 1 })
}

func (g *Gauge) Dec() {
	if g == nil {
		return
	}
	g.apply(func(cur float64) float64 { return cur - 1 })
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.write(w, "gauge")
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), v.total); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n", h.name, k, v.sum); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_count%s %d\n", h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(escapeLabel(val))
		b.WriteString("\"")
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	return strings.ReplaceAll(v, "\n", "\\n")
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" || labels == "{}" {
		return "{le=\"" + le + "\"}"
	}
	return strings.TrimSuffix(labels, "}") + ",le=\"" + le + "\"}"
}
