package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"banksentinel/config"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/telegram"
)

// IndicatorSpec configures regime detection for one indicator.
type IndicatorSpec struct {
	Name string
	// ZThreshold is the minimum |z| that flags a shift. Already-normalized
	// indices typically want a lower bar than raw series.
	ZThreshold float64
	// HigherIsStress orients direction: deposit outflows invert it.
	HigherIsStress bool
}

// DefaultIndicators cover the macro series the Fed collector emits.
var DefaultIndicators = []IndicatorSpec{
	{Name: seriesCreditSpread, ZThreshold: 2.0, HigherIsStress: true},
	{Name: seriesRateSpread, ZThreshold: 2.0, HigherIsStress: true},
	{Name: seriesFedFacility, ZThreshold: 2.0, HigherIsStress: true},
	{Name: seriesDepositTrend, ZThreshold: 2.0, HigherIsStress: false},
	{Name: seriesStressIndex, ZThreshold: 1.5, HigherIsStress: true},
}

type RegimeAlert struct {
	Indicator string
	Value     float64
	Mean      float64
	StdDev    float64
	Z         float64
	Direction string // stress or easing
	Severity  string // moderate, elevated, severe, extreme
	At        time.Time
}

type RegimeSummary struct {
	StressAlerts int
	EasingAlerts int
	Overall      string // crisis, stress, elevated, calm, normal
}

// rollingWindow keeps incremental sum and sum of squares over a fixed-size
// ring. Push and stats are O(1), memory is O(window).
type rollingWindow struct {
	values []float64
	head   int
	count  int
	sum    float64
	sumSq  float64
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{values: make([]float64, size)}
}

func (w *rollingWindow) push(v float64) {
	if w.count == len(w.values) {
		old := w.values[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.values[w.head] = v
	w.sum += v
	w.sumSq += v * v
	w.head = (w.head + 1) % len(w.values)
}

func (w *rollingWindow) mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

func (w *rollingWindow) stdDev() float64 {
	if w.count < 2 {
		return 0
	}
	mean := w.mean()
	variance := w.sumSq/float64(w.count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// RegimeDetector tracks rolling distributions per indicator and flags
// observations that deviate past the configured threshold. Safe for
// concurrent use.
type RegimeDetector struct {
	mu         sync.Mutex
	cfg        config.RegimeConfig
	specs      map[string]IndicatorSpec
	windows    map[string]*rollingWindow
	lastAlerts map[string]*RegimeAlert
}

func NewRegimeDetector(cfg config.RegimeConfig, specs []IndicatorSpec) *RegimeDetector {
	d := &RegimeDetector{
		cfg:        cfg,
		specs:      make(map[string]IndicatorSpec, len(specs)),
		windows:    make(map[string]*rollingWindow, len(specs)),
		lastAlerts: make(map[string]*RegimeAlert),
	}
	for _, spec := range specs {
		d.specs[spec.Name] = spec
		d.windows[spec.Name] = newRollingWindow(cfg.Lookback)
	}
	return d
}

// Observe folds one observation into the indicator's rolling window and
// returns an alert when it sits past the threshold. The z-score is computed
// against the distribution before the new value joins it. Unknown indicators
// and windows below the minimum history never alert.
func (d *RegimeDetector) Observe(indicator string, value float64, at time.Time) *RegimeAlert {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.specs[indicator]
	if !ok {
		return nil
	}
	window := d.windows[indicator]

	var alert *RegimeAlert
	if window.count >= d.cfg.MinHistory {
		mean := window.mean()
		std := window.stdDev()
		if std > 0 {
			z := (value - mean) / std
			if math.Abs(z) >= spec.ZThreshold {
				alert = &RegimeAlert{
					Indicator: indicator,
					Value:     value,
					Mean:      mean,
					StdDev:    std,
					Z:         z,
					Direction: direction(z, spec.HigherIsStress),
					Severity:  severity(z),
					At:        at,
				}
			}
		}
	}

	window.push(value)
	d.lastAlerts[indicator] = alert
	return alert
}

// Summary derives the overall regime label from the indicators currently in
// an alerting state.
func (d *RegimeDetector) Summary() RegimeSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	var s RegimeSummary
	for _, alert := range d.lastAlerts {
		if alert == nil {
			continue
		}
		if alert.Direction == "stress" {
			s.StressAlerts++
		} else {
			s.EasingAlerts++
		}
	}

	switch {
	case s.StressAlerts >= 3:
		s.Overall = "crisis"
	case s.StressAlerts >= 2:
		s.Overall = "stress"
	case s.StressAlerts == 1:
		s.Overall = "elevated"
	case s.EasingAlerts >= 2:
		s.Overall = "calm"
	default:
		s.Overall = "normal"
	}
	return s
}

func direction(z float64, higherIsStress bool) string {
	if (z > 0) == higherIsStress {
		return "stress"
	}
	return "easing"
}

func severity(z float64) string {
	abs := math.Abs(z)
	switch {
	case abs >= 3:
		return "extreme"
	case abs >= 2.5:
		return "severe"
	case abs >= 2:
		return "elevated"
	default:
		return "moderate"
	}
}

// RegimeService feeds indicator observations into the detector and pushes
// severe shifts to Telegram.
type RegimeService interface {
	// Ingest folds indicator events persisted since the last sweep into the
	// detector, in published order.
	Ingest(ctx context.Context) error
	Observe(ctx context.Context, indicator string, value float64, at time.Time) *RegimeAlert
	Summary() RegimeSummary
}

type regimeService struct {
	log       *logger.Logger
	detector  *RegimeDetector
	notifier  *telegram.Notifier
	eventRepo repository.EventRepository

	mu       sync.Mutex
	lastSeen time.Time
}

func NewRegimeService(
	log *logger.Logger,
	detector *RegimeDetector,
	notifier *telegram.Notifier,
	eventRepo repository.EventRepository,
) RegimeService {
	return &regimeService{
		log:       log,
		detector:  detector,
		notifier:  notifier,
		eventRepo: eventRepo,
		lastSeen:  time.Now().Add(-detector.cfg.IngestWindow),
	}
}

func (s *regimeService) Ingest(ctx context.Context) error {
	s.mu.Lock()
	// The repo filter is inclusive, nudge past the previous watermark.
	after := s.lastSeen.Add(time.Nanosecond)
	s.mu.Unlock()

	events, err := s.eventRepo.Get(ctx, model.GetEventParam{
		Types: []model.EventType{model.EventFedIndicator, model.EventDepositFlow},
		After: &after,
	})
	if err != nil {
		return fmt.Errorf("failed to load indicator events: %w", err)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].PublishedAt.Before(events[j].PublishedAt)
	})

	newest := after
	for _, event := range events {
		series := payloadString(event.Payload, "series_id")
		if event.Type == model.EventDepositFlow {
			series = seriesDepositTrend
		}
		if series != "" {
			s.Observe(ctx, series, payloadFloat(event.Payload, "value"), event.PublishedAt)
		}
		if event.PublishedAt.After(newest) {
			newest = event.PublishedAt
		}
	}

	s.mu.Lock()
	s.lastSeen = newest
	s.mu.Unlock()
	return nil
}

func (s *regimeService) Observe(ctx context.Context, indicator string, value float64, at time.Time) *RegimeAlert {
	alert := s.detector.Observe(indicator, value, at)
	if alert == nil {
		return nil
	}

	s.log.WarnContext(ctx, "Regime shift detected",
		logger.StringField("indicator", alert.Indicator),
		logger.Float64Field("z", alert.Z),
		logger.StringField("direction", alert.Direction),
		logger.StringField("severity", alert.Severity),
	)

	if alert.Severity == "severe" || alert.Severity == "extreme" {
		summary := s.detector.Summary()
		msg := fmt.Sprintf(
			"⚠️ Regime shift: %s at %.2f (z=%.1f, %s %s)\nOverall regime: %s (%d stress / %d easing)",
			alert.Indicator, alert.Value, alert.Z, alert.Severity, alert.Direction,
			summary.Overall, summary.StressAlerts, summary.EasingAlerts,
		)
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.ErrorContext(ctx, "Failed to send regime alert", logger.ErrorField(err))
		}
	}
	return alert
}

func (s *regimeService) Summary() RegimeSummary {
	return s.detector.Summary()
}
