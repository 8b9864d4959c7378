package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tariff-map-system/model"
)

func TestDegreesToRadians(t *testing.T) {
	assert.InDelta(t, 0, DegreesToRadians(0), 1e-12)
	assert.InDelta(t, math.Pi, DegreesToRadians(180), 1e-12)
	assert.InDelta(t, -math.Pi/2, DegreesToRadians(-90), 1e-12)
}

func TestHaversineDistance_KnownPairs(t *testing.T) {
	// 赤道上经度相差 1° 约等于 111.195 公里
	d := HaversineDistance(model.Point{Lon: 0, Lat: 0}, model.Point{Lon: 1, Lat: 0})
	assert.InDelta(t, 111.195, d, 0.01)

	// 两极之间是半个大圆
	d = HaversineDistance(model.Point{Lon: 0, Lat: 90}, model.Point{Lon: 0, Lat: -90})
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 0.01)

	// 巴黎 - 伦敦, 公开资料约 344 公里
	paris := model.Point{Lon: 2.3522, Lat: 48.8566}
	london := model.Point{Lon: -0.1276, Lat: 51.5072}
	d = HaversineDistance(paris, london)
	assert.InDelta(t, 344, d, 5)
}

func TestHaversineDistance_Symmetry(t *testing.T) {
	// 东京 - 旧金山
	a := model.Point{Lon: 139.6503, Lat: 35.6762}
	b := model.Point{Lon: -122.4194, Lat: 37.7749}
	assert.Equal(t, HaversineDistance(a, b), HaversineDistance(b, a))
}

func TestHaversineDistance_SamePointIsZero(t *testing.T) {
	p := model.Point{Lon: 114.1095, Lat: 22.3964}
	assert.Zero(t, HaversineDistance(p, p))
}
