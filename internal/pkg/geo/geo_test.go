package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	monas := Point{Latitude: -6.175392, Longitude: 106.827153}
	bundaranHI := Point{Latitude: -6.194951, Longitude: 106.823060}

	assert.Zero(t, Distance(monas, monas))
	assert.InDelta(t, 2220, Distance(monas, bundaranHI), 30)
	assert.InDelta(t, Distance(monas, bundaranHI), Distance(bundaranHI, monas), 1e-9)
}

func TestFenceContains(t *testing.T) {
	office := Point{Latitude: -6.175392, Longitude: 106.827153}

	assert.True(t, Fence{}.Contains(Point{Latitude: 51.5, Longitude: -0.12}), "disabled fence accepts anything")

	fence := Fence{Center: office, Radius: 100}
	assert.True(t, fence.Contains(Point{Latitude: -6.1756, Longitude: 106.8272}))
	assert.False(t, fence.Contains(Point{Latitude: -6.194951, Longitude: 106.823060}))
}
