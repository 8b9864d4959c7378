package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorldGeoJSON 世界各国边界 GeoJSON 原文 (main 启动时加载, 可为空)
var WorldGeoJSON []byte

// 边界文件缺失时兜底, 前端拿到空集合仍能渲染底图
var emptyFeatureCollection = []byte(`{"type":"FeatureCollection","features":[]}`)

// GetWorldGeoJSON 返回世界各国边界, 供前端地图按关税着色
func GetWorldGeoJSON(c *gin.Context) {
	body := WorldGeoJSON
	if len(body) == 0 {
		body = emptyFeatureCollection
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}
