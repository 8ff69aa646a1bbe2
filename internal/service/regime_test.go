package service

import (
	"context"
	"testing"
	"time"

	"banksentinel/config"
	"banksentinel/internal/model"
	"banksentinel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector(minHistory int) *RegimeDetector {
	return NewRegimeDetector(
		config.RegimeConfig{Lookback: 90, MinHistory: minHistory},
		[]IndicatorSpec{
			{Name: "spread", ZThreshold: 2.0, HigherIsStress: true},
			{Name: "deposits", ZThreshold: 2.0, HigherIsStress: false},
		},
	)
}

// feedStable pushes n observations alternating tightly around a mean so the
// rolling std stays small but nonzero.
func feedStable(d *RegimeDetector, indicator string, mean float64, n int) {
	at := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
	for i := 0; i < n; i++ {
		v := mean - 1
		if i%2 == 0 {
			v = mean + 1
		}
		d.Observe(indicator, v, at.Add(time.Duration(i)*24*time.Hour))
	}
}

func TestRegimeDetector_NoAlertBelowMinHistory(t *testing.T) {
	d := testDetector(20)

	feedStable(d, "spread", 100, 19)

	// Massive outlier, but only 19 points of history.
	alert := d.Observe("spread", 10000, time.Now())
	assert.Nil(t, alert)
}

func TestRegimeDetector_ThreeSigmaIsExtremeStress(t *testing.T) {
	d := testDetector(20)

	feedStable(d, "spread", 100, 30)

	// Stable window has mean 100 and std 1.
	alert := d.Observe("spread", 103.5, time.Now())
	require.NotNil(t, alert)
	assert.Equal(t, "extreme", alert.Severity)
	assert.Equal(t, "stress", alert.Direction)
	assert.InDelta(t, 3.5, alert.Z, 0.01)
}

func TestRegimeDetector_DirectionInvertsWhenLowerIsStress(t *testing.T) {
	d := testDetector(20)

	feedStable(d, "deposits", 0, 30)

	// A sharp drop in deposits is stress, not easing.
	alert := d.Observe("deposits", -4, time.Now())
	require.NotNil(t, alert)
	assert.Equal(t, "stress", alert.Direction)

	feedStable(d, "spread", 100, 30)
	easing := d.Observe("spread", 96, time.Now())
	require.NotNil(t, easing)
	assert.Equal(t, "easing", easing.Direction)
}

func TestRegimeDetector_UnknownIndicatorIgnored(t *testing.T) {
	d := testDetector(1)

	assert.Nil(t, d.Observe("unknown", 1e9, time.Now()))
}

func TestRegimeDetector_WindowEvictsOldValues(t *testing.T) {
	d := NewRegimeDetector(
		config.RegimeConfig{Lookback: 10, MinHistory: 5},
		[]IndicatorSpec{{Name: "spread", ZThreshold: 2.0, HigherIsStress: true}},
	)

	// Old high plateau fully evicted by a later low plateau.
	feedStable(d, "spread", 1000, 10)
	feedStable(d, "spread", 100, 10)

	alert := d.Observe("spread", 103.5, time.Now())
	require.NotNil(t, alert)
	assert.InDelta(t, 100, alert.Mean, 0.01)
}

func TestRegimeDetector_Summary(t *testing.T) {
	d := NewRegimeDetector(
		config.RegimeConfig{Lookback: 90, MinHistory: 5},
		[]IndicatorSpec{
			{Name: "a", ZThreshold: 2.0, HigherIsStress: true},
			{Name: "b", ZThreshold: 2.0, HigherIsStress: true},
			{Name: "c", ZThreshold: 2.0, HigherIsStress: true},
		},
	)
	for _, name := range []string{"a", "b", "c"} {
		feedStable(d, name, 100, 10)
	}

	assert.Equal(t, "normal", d.Summary().Overall)

	d.Observe("a", 110, time.Now())
	assert.Equal(t, "elevated", d.Summary().Overall)

	d.Observe("b", 110, time.Now())
	assert.Equal(t, "stress", d.Summary().Overall)

	d.Observe("c", 110, time.Now())
	summary := d.Summary()
	assert.Equal(t, "crisis", summary.Overall)
	assert.Equal(t, 3, summary.StressAlerts)

	// A calm follow-up observation clears the indicator's alert state.
	d.Observe("a", 100, time.Now())
	assert.Equal(t, "stress", d.Summary().Overall)
}

// The startup backfill horizon is a duration of its own. Lookback sizes the
// rolling window in observations and must not bound how far back the first
// sweep reads.
func TestRegimeIngest_BackfillBoundedByIngestWindow(t *testing.T) {
	detector := NewRegimeDetector(
		config.RegimeConfig{Lookback: 90, MinHistory: 5, IngestWindow: 48 * time.Hour},
		DefaultIndicators,
	)
	events := &memEventStore{}
	now := time.Now()
	ctx := context.Background()

	_, err := events.Insert(ctx, &model.Event{
		Type:        model.EventFedIndicator,
		Payload:     []byte(`{"series_id":"HY_OAS","value":300}`),
		PublishedAt: now.Add(-10 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = events.Insert(ctx, &model.Event{
		Type:        model.EventFedIndicator,
		Payload:     []byte(`{"series_id":"HY_OAS","value":320}`),
		PublishedAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	svc := NewRegimeService(logger.NewNop(), detector, nil, events)
	require.NoError(t, svc.Ingest(ctx))

	assert.Equal(t, 1, detector.windows[seriesCreditSpread].count,
		"only observations inside the ingest window are replayed")
}
