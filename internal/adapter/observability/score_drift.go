// Package observability provides logging, metrics, and tracing.
//
// It integrates with OpenTelemetry for tracing and Prometheus for metrics,
// and watches overall evaluation scores for drift.
package observability

import (
	"log/slog"
	"math"
	"sync"
)

const (
	defaultDriftWindow    = 20
	defaultDriftThreshold = 1.5
)

// ScoreDriftMonitor tracks a rolling window of overall scores for one
// framework and source. The mean of the first full window becomes the
// baseline unless one was set explicitly.
type ScoreDriftMonitor struct {
	mu          sync.Mutex
	framework   string
	source      string
	windowSize  int
	threshold   float64
	baseline    float64
	hasBaseline bool
	recent      []float64
}

// NewScoreDriftMonitor creates a monitor; threshold is in score points.
func NewScoreDriftMonitor(framework, source string, windowSize int, threshold float64) *ScoreDriftMonitor {
	if windowSize <= 0 {
		windowSize = defaultDriftWindow
	}
	return &ScoreDriftMonitor{
		framework:  framework,
		source:     source,
		windowSize: windowSize,
		threshold:  threshold,
		recent:     make([]float64, 0, windowSize),
	}
}

// SetBaseline pins the baseline mean.
func (m *ScoreDriftMonitor) SetBaseline(score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseline = score
	m.hasBaseline = true
}

// Baseline returns the baseline and whether one exists yet.
func (m *ScoreDriftMonitor) Baseline() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseline, m.hasBaseline
}

// Record adds a score and returns the current drift (0 until the window fills).
func (m *ScoreDriftMonitor) Record(score float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recent = append(m.recent, score)
	if len(m.recent) > m.windowSize {
		m.recent = m.recent[1:]
	}
	if len(m.recent) < m.windowSize {
		return 0
	}
	avg := mean(m.recent)
	if !m.hasBaseline {
		m.baseline = avg
		m.hasBaseline = true
		slog.Info("score drift baseline established",
			slog.String("framework", m.framework),
			slog.String("source", m.source),
			slog.Float64("baseline", avg))
		return 0
	}
	drift := math.Abs(avg - m.baseline)
	ScoreDriftGauge.WithLabelValues(m.framework, m.source).Set(drift)
	if drift > m.threshold {
		slog.Warn("score drift detected",
			slog.String("framework", m.framework),
			slog.String("source", m.source),
			slog.Float64("drift", drift),
			slog.Float64("threshold", m.threshold))
	}
	return drift
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// ScoreDriftManager hands out one monitor per framework and source.
type ScoreDriftManager struct {
	mu         sync.Mutex
	monitors   map[string]*ScoreDriftMonitor
	windowSize int
	threshold  float64
}

// NewScoreDriftManager creates a manager whose monitors share window and threshold.
func NewScoreDriftManager(windowSize int, threshold float64) *ScoreDriftManager {
	return &ScoreDriftManager{monitors: make(map[string]*ScoreDriftMonitor), windowSize: windowSize, threshold: threshold}
}

// Monitor returns the monitor for framework and source, creating it on first use.
func (d *ScoreDriftManager) Monitor(framework, source string) *ScoreDriftMonitor {
	key := framework + "/" + source
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.monitors[key]; ok {
		return m
	}
	m := NewScoreDriftMonitor(framework, source, d.windowSize, d.threshold)
	d.monitors[key] = m
	return m
}

var globalDrift = NewScoreDriftManager(defaultDriftWindow, defaultDriftThreshold)

// RecordScoreDrift feeds an overall score into the process-wide drift monitors.
func RecordScoreDrift(framework, source string, score float64) float64 {
	return globalDrift.Monitor(framework, source).Record(score)
}
