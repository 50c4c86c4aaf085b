package metricsexport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSampleAccumulatesDeltas(t *testing.T) {
	e := New()
	last := NewTotals()

	e.Sample(10, 2, 5, last)
	require.InDelta(t, 10, testutil.ToFloat64(e.eventsProcessed), 0.001)
	require.InDelta(t, 2, testutil.ToFloat64(e.eventsDropped), 0.001)
	require.InDelta(t, 5, testutil.ToFloat64(e.poolInUse), 0.001)

	e.Sample(15, 2, 3, last)
	require.InDelta(t, 15, testutil.ToFloat64(e.eventsProcessed), 0.001)
	require.InDelta(t, 2, testutil.ToFloat64(e.eventsDropped), 0.001)
	require.InDelta(t, 3, testutil.ToFloat64(e.poolInUse), 0.001)
}

func TestSetPoolCapacity(t *testing.T) {
	e := New()
	e.SetPoolCapacity(1000)
	require.InDelta(t, 1000, testutil.ToFloat64(e.poolCapacity), 0.001)
}

func TestNewRegistersDistinctRegistries(t *testing.T) {
	a := New()
	b := New()
	require.NotPanics(t, func() {
		a.SetPoolCapacity(1)
		b.SetPoolCapacity(2)
	})
}
