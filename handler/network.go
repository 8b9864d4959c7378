package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tariff-map-system/model"
	"tariff-map-system/utils"
)

// NodeInfo 节点信息
type NodeInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Country     string     `json:"country_iso3"`
	Coordinates [2]float64 `json:"coordinates"` // [经度, 纬度]
	Aliases     []string   `json:"aliases,omitempty"`
	DistanceKm  float64    `json:"distance_km,omitempty"` // 仅最近设施查询时填充
}

// CountryInfo 国家信息
type CountryInfo struct {
	ISO3          string     `json:"iso3"`
	Name          string     `json:"name"`
	Coordinates   [2]float64 `json:"coordinates"`
	HasFacilities bool       `json:"has_facilities"`
	FacilityCount int        `json:"facility_count"`
}

func nodeInfo(node *model.Node) NodeInfo {
	return NodeInfo{
		ID:          node.ID,
		Name:        node.Name,
		Kind:        node.Kind,
		Country:     node.Country,
		Coordinates: [2]float64{node.Lon, node.Lat},
		Aliases:     node.Aliases,
	}
}

// GetCountries 获取全部国家列表
func GetCountries(c *gin.Context) {
	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	anchors := Catalog.Anchors()
	countries := make([]CountryInfo, 0, len(anchors))
	for _, a := range anchors {
		countries = append(countries, CountryInfo{
			ISO3:          a.ID,
			Name:          Catalog.CountryName(a.ID),
			Coordinates:   [2]float64{a.Lon, a.Lat},
			HasFacilities: Catalog.HasFacilities(a.ID),
			FacilityCount: len(Catalog.FacilitiesInCountry(a.ID)),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(countries),
		"countries": countries,
	})
}

// GetNodes 获取全部节点，支持 ?country= 和 ?kind= 过滤
func GetNodes(c *gin.Context) {
	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	country := strings.ToUpper(strings.TrimSpace(c.Query("country")))
	kind := strings.TrimSpace(c.Query("kind"))

	all := Catalog.Nodes()
	nodes := make([]NodeInfo, 0, len(all))
	for i := range all {
		node := &all[i]
		if country != "" && node.Country != country {
			continue
		}
		if kind != "" && node.Kind != kind {
			continue
		}
		nodes = append(nodes, nodeInfo(node))
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(nodes),
		"nodes": nodes,
	})
}

// GetNodeByID 根据 ID 获取节点信息
func GetNodeByID(c *gin.Context) {
	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	node, ok := Catalog.Node(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "节点不存在"})
		return
	}

	c.JSON(http.StatusOK, nodeInfo(node))
}

// SearchNodes 按名称、ID 或别名搜索节点
func SearchNodes(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少搜索关键词"})
		return
	}

	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	matches := Catalog.SearchNodes(query, limit)
	results := make([]NodeInfo, 0, len(matches))
	for i := range matches {
		results = append(results, nodeInfo(&matches[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// NearestNodes 查离给定坐标最近的物流设施
func NearestNodes(c *gin.Context) {
	if Catalog == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "物流网络数据未加载"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon 参数缺失或非法"})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat 参数缺失或非法"})
		return
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "坐标超出范围"})
		return
	}

	n := 5
	if raw := c.Query("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}

	origin := model.Point{Lon: lon, Lat: lat}
	found := Catalog.NearestFacilities(lon, lat, n)
	nodes := make([]NodeInfo, 0, len(found))
	for _, node := range found {
		info := nodeInfo(node)
		info.DistanceKm = utils.HaversineDistance(origin, node.Location())
		nodes = append(nodes, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(nodes),
		"nodes": nodes,
	})
}
