package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-map-system/tariff"
)

func ratePtr(v float64) *float64 { return &v }

// newTestIndex 两个报告国, 税率是小数形式 (0.12 = 12%)
func newTestIndex() tariff.Index {
	return tariff.Index{
		"24": {
			"DEU": {
				"FRA": tariff.Entry{Rate: ratePtr(0.12), Year: 2023},
				"USA": tariff.Entry{Rate: ratePtr(0.085), Year: 2022},
				"XKX": tariff.Entry{Year: 2023}, // 没有税率值, 应跳过
			},
			"JPN": {
				"CHN": tariff.Entry{Rate: ratePtr(0.0), Year: 2021},
			},
		},
	}
}

func newTariffRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/tariffs", GetTariffs)
	r.GET("/api/tariffs/reporters", GetTariffReporters)
	return r
}

func TestGetTariffs_Offline(t *testing.T) {
	TariffIndex = newTestIndex()
	r := newTariffRouter()

	w := doGET(t, r, "/api/tariffs?from=deu")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TariffResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "DEU", resp.Reporter)
	assert.Equal(t, "offline", resp.Source)
	assert.Equal(t, "HS", resp.Product.Classification)
	assert.Equal(t, "24", resp.Product.Code)
	assert.Equal(t, "2023", resp.Year)

	// 没有税率值的记录被跳过, 伙伴国按 ISO3 升序, 税率换算成百分数
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Tariffs, 2)
	assert.Equal(t, "FRA", resp.Tariffs[0].Partner)
	assert.InDelta(t, 12.0, resp.Tariffs[0].Rate, 1e-9)
	assert.Equal(t, "USA", resp.Tariffs[1].Partner)
	assert.InDelta(t, 8.5, resp.Tariffs[1].Rate, 1e-9)
}

func TestGetTariffs_ParamErrors(t *testing.T) {
	TariffIndex = newTestIndex()
	r := newTariffRouter()

	// 缺 from
	w := doGET(t, r, "/api/tariffs")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知数据源
	w = doGET(t, r, "/api/tariffs?from=DEU&source=csv")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 索引里没有的报告国
	w = doGET(t, r, "/api/tariffs?from=BRA")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTariffs_WTOUnconfigured(t *testing.T) {
	TariffIndex = newTestIndex()
	WTOClient = nil
	r := newTariffRouter()

	w := doGET(t, r, "/api/tariffs?from=DEU&source=wto")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WTO")
}

func TestGetTariffs_WTOSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"Dataset": []map[string]interface{}{
				{"partnerEconomyCode": 156, "year": 2023, "value": 7.5, "unitCode": "%"},
			},
		})
	}))
	defer server.Close()

	TariffIndex = newTestIndex()
	cli := tariff.NewClient("test-key")
	cli.BaseURL = server.URL
	WTOClient = cli
	defer func() { WTOClient = nil }()

	r := newTariffRouter()
	w := doGET(t, r, "/api/tariffs?from=USA&source=wto")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TariffResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "USA", resp.Reporter)
	assert.Equal(t, "wto", resp.Source)
	assert.Equal(t, "2023", resp.Year)
	require.Len(t, resp.Tariffs, 1)
	// 伙伴国字典不可用, 保留原始数字代码
	assert.Equal(t, "156", resp.Tariffs[0].Partner)
	assert.InDelta(t, 7.5, resp.Tariffs[0].Rate, 1e-9)
}

func TestGetTariffs_WTOFallsBackToOffline(t *testing.T) {
	// 服务器立刻关掉, 在线查询必然失败
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	TariffIndex = newTestIndex()
	cli := tariff.NewClient("test-key")
	cli.BaseURL = server.URL
	WTOClient = cli
	defer func() { WTOClient = nil }()

	r := newTariffRouter()
	w := doGET(t, r, "/api/tariffs?from=DEU&source=wto")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TariffResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "offline", resp.Source, "在线失败后应回退离线索引")
	assert.Len(t, resp.Tariffs, 2)
}

func TestGetTariffReporters(t *testing.T) {
	TariffIndex = newTestIndex()
	r := newTariffRouter()

	w := doGET(t, r, "/api/tariffs/reporters")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count     int      `json:"count"`
		Reporters []string `json:"reporters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"DEU", "JPN"}, resp.Reporters)
}
