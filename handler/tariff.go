package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tariff-map-system/model"
	"tariff-map-system/tariff"
)

// 关税数据源 (应在 main 中初始化)
var (
	TariffIndex    tariff.Index   // 离线索引, 始终可用
	WTOClient      *tariff.Client // 可选的 WTO Timeseries 在线数据源
	Classification = "HS"         // 商品分类体系
	ProductCode    = "24"         // HS 章节 (24 = 烟草及烟草制品)
	DefaultYear    = "latest"     // WTO 查询默认年份
)

// ProductInfo 商品信息
type ProductInfo struct {
	Classification string `json:"classification"`
	Code           string `json:"code"`
}

// TariffResponse 关税查询响应
// Tariffs 里的税率单位是百分比; MFN 回退时只有一条伙伴国为 "ALL" 的记录
type TariffResponse struct {
	Reporter string             `json:"reporter"`
	Product  ProductInfo        `json:"product"`
	Source   string             `json:"source"`
	Year     string             `json:"year"`
	Count    int                `json:"count"`
	Tariffs  []model.TariffRate `json:"tariffs"`
}

// GetTariffs 查询某报告国对各伙伴国的关税
// ?from=ISO3 必填; ?source=offline|wto 选数据源, 默认离线索引;
// ?year= 只对 wto 数据源生效
func GetTariffs(c *gin.Context) {
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 from 参数"})
		return
	}

	source := c.DefaultQuery("source", "offline")
	switch source {
	case "offline":
		getOfflineTariffs(c, from)
	case "wto":
		getWTOTariffs(c, from)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的数据源: " + source})
	}
}

func getOfflineTariffs(c *gin.Context, from string) {
	if TariffIndex == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "关税索引未加载"})
		return
	}

	rates := TariffIndex.RatesFor(ProductCode, from)
	if len(rates) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "该报告国暂无关税数据: " + from})
		return
	}

	c.JSON(http.StatusOK, TariffResponse{
		Reporter: from,
		Product:  ProductInfo{Classification: Classification, Code: ProductCode},
		Source:   "offline",
		Year:     tariff.LatestYear(rates),
		Count:    len(rates),
		Tariffs:  rates,
	})
}

func getWTOTariffs(c *gin.Context, from string) {
	if WTOClient == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未配置 WTO API Key, 在线数据源不可用"})
		return
	}

	year := c.DefaultQuery("year", DefaultYear)
	rates, err := WTOClient.TariffsForReporter(from, ProductCode, year)
	if err != nil || len(rates) == 0 {
		// 在线数据拿不到就回退离线索引
		if err != nil {
			log.Printf("WTO 接口调用失败, 回退离线索引: %v", err)
		}
		getOfflineTariffs(c, from)
		return
	}

	c.JSON(http.StatusOK, TariffResponse{
		Reporter: from,
		Product:  ProductInfo{Classification: Classification, Code: ProductCode},
		Source:   "wto",
		Year:     tariff.LatestYear(rates),
		Count:    len(rates),
		Tariffs:  rates,
	})
}

// GetTariffReporters 列出离线索引里有数据的报告国 (前端下拉框用)
func GetTariffReporters(c *gin.Context) {
	if TariffIndex == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "关税索引未加载"})
		return
	}

	reporters := TariffIndex.Reporters(ProductCode)
	c.JSON(http.StatusOK, gin.H{
		"count":     len(reporters),
		"reporters": reporters,
	})
}
