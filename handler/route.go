package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tariff-map-system/algo"
	"tariff-map-system/model"
)

// Catalog 全局节点目录 (应在 main 中初始化)
var Catalog *algo.Catalog

// RouteRequest 跨国路线规划请求
// 三个系数都是可选的: 缺省表示该运输方式禁用, 0 表示免费, 负数和 NaN 非法
type RouteRequest struct {
	SourceISO3 string   `json:"source_iso3" binding:"required,len=3"` // 起点国家 ISO3
	TargetISO3 string   `json:"target_iso3" binding:"required,len=3"` // 终点国家 ISO3
	FactorRoad *float64 `json:"factor_road"`                          // 公路每公里成本系数
	FactorSea  *float64 `json:"factor_sea"`                           // 海运每公里成本系数
	FactorAir  *float64 `json:"factor_air"`                           // 空运每公里成本系数
}

// RoutePathNode 路线途经节点信息
type RoutePathNode struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Country     string     `json:"country_iso3"`
	Coordinates [2]float64 `json:"coordinates"` // [经度, 纬度]
}

// RouteResponse 路线规划响应
type RouteResponse struct {
	Source  string            `json:"source_iso3"`
	Target  string            `json:"target_iso3"`
	Path    []RoutePathNode   `json:"path"`
	Legs    []algo.RouteLeg   `json:"legs"`
	Summary algo.RouteSummary `json:"summary"`
}

// FindRoute 路线规划接口
func FindRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	factors := model.NewModeFactors(req.FactorRoad, req.FactorSea, req.FactorAir)

	result, err := algo.PlanRoute(Catalog, req.SourceISO3, req.TargetISO3, factors)
	if err != nil {
		switch {
		case errors.Is(err, algo.ErrInvalidFactor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的成本系数: " + err.Error()})
		case errors.Is(err, algo.ErrCountryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "国家不存在: " + err.Error()})
		case errors.Is(err, algo.ErrNoRoute):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "在所选运输方式下无可达路线"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "路线规划失败: " + err.Error()})
		}
		return
	}

	path := make([]RoutePathNode, 0, len(result.Path))
	for _, node := range result.Path {
		path = append(path, RoutePathNode{
			ID:          node.ID,
			Name:        node.Name,
			Kind:        node.Kind,
			Country:     node.Country,
			Coordinates: [2]float64{node.Lon, node.Lat},
		})
	}

	// 锚点 ID 就是规范化后的 ISO3, 直接回显
	c.JSON(http.StatusOK, RouteResponse{
		Source:  result.Path[0].ID,
		Target:  result.Path[len(result.Path)-1].ID,
		Path:    path,
		Legs:    result.Legs,
		Summary: result.Summary,
	})
}
