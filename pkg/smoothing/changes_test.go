package smoothing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanges(t *testing.T) {
	got := Changes(timeline(10, 4, 11, 11.5, 0, 5), 0.2)
	require.Len(t, got, 3)

	assert.Equal(t, 2, got[0].Layer)
	assert.InDelta(t, -0.6, got[0].Ratio, 1e-9)
	assert.Equal(t, 3, got[1].Layer)
	assert.InDelta(t, 1.75, got[1].Ratio, 1e-9)
	assert.Equal(t, 5, got[2].Layer)
	assert.InDelta(t, -1, got[2].Ratio, 1e-9)
	// Layer 6 follows a zero-length layer and has no ratio.
}

func TestChanges_NoneWithinThreshold(t *testing.T) {
	assert.Empty(t, Changes(timeline(10, 9, 10.5), 0.2))
	assert.Empty(t, Changes(nil, 0.2))
}

func TestTimeline_Helpers(t *testing.T) {
	tl := Timeline{{Layer: 0, Seconds: 1.5}, {Layer: 3, Seconds: 2.5}}

	v, ok := tl.Lookup(3)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = tl.Lookup(1)
	assert.False(t, ok)

	assert.Equal(t, map[int]float64{0: 1.5, 3: 2.5}, tl.Index())
	assert.Equal(t, []float64{1.5, 2.5}, tl.Seconds())
	assert.Equal(t, 4.0, tl.Total())

	c := tl.Clone()
	c[0].Seconds = 99
	assert.Equal(t, 1.5, tl[0].Seconds)
	assert.Nil(t, Timeline(nil).Clone())
}
