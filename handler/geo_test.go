package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorldGeoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/world-geojson", GetWorldGeoJSON)

	// 未加载时兜底返回空集合
	WorldGeoJSON = nil
	w := doGET(t, r, "/api/world-geojson")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, w.Body.String())

	// 加载后原样返回
	WorldGeoJSON = []byte(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"ISO_A3":"DEU"},"geometry":null}]}`)
	defer func() { WorldGeoJSON = nil }()

	w = doGET(t, r, "/api/world-geojson")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "DEU")
}
