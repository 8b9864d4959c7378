package tariff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-map-system/model"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key")
	c.BaseURL = serverURL
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestTariffsForReporter_PreferentialLatest(t *testing.T) {
	var dataQueries []url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reporters":
			writeJSON(w, []map[string]interface{}{
				{"code": "842", "alpha3Code": "USA"},
			})
		case "/partners":
			writeJSON(w, []map[string]interface{}{
				{"code": "250", "alpha3Code": "FRA"},
				{"code": "616", "alpha3Code": "POL"},
			})
		case "/data":
			dataQueries = append(dataQueries, r.URL.Query())
			// 同一伙伴国两年的数据 + 一条字符串形式的税率值
			writeJSON(w, map[string]interface{}{"Dataset": []map[string]interface{}{
				{"partnerEconomyCode": 250, "year": 2022, "value": 10.0, "unitCode": "%"},
				{"partnerEconomyCode": 250, "year": 2024, "value": 12.0, "unitCode": "%"},
				{"partnerEconomyCode": "616", "year": "2023", "value": "4.5"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	rates, err := c.TariffsForReporter("usa", "24", "latest")
	require.NoError(t, err)
	require.Len(t, rates, 2, "latest 模式下每个伙伴国只留最新一年")

	assert.Equal(t, "FRA", rates[0].Partner)
	assert.Equal(t, "2024", rates[0].Year)
	assert.InDelta(t, 12.0, rates[0].Rate, 1e-9)
	assert.Equal(t, "USA", rates[0].Reporter)
	assert.Equal(t, IndicatorPreferential, rates[0].Flag)

	assert.Equal(t, "POL", rates[1].Partner)
	assert.InDelta(t, 4.5, rates[1].Rate, 1e-9)
	assert.Equal(t, "%", rates[1].Unit)

	require.Len(t, dataQueries, 1)
	q := dataQueries[0]
	assert.Equal(t, IndicatorPreferential, q.Get("i"))
	assert.Equal(t, "842", q.Get("r"), "报告国代码要用字典映射出的数字代码")
	assert.Equal(t, "all", q.Get("p"))
	assert.Equal(t, "HS", q.Get("px"))
	assert.Equal(t, "24", q.Get("pc"))
	assert.Equal(t, "all", q.Get("ps"))
	assert.Equal(t, "true", q.Get("spc"))
	assert.Equal(t, "json", q.Get("fmt"))
}

func TestTariffsForReporter_EUReporterUses918(t *testing.T) {
	var gotReporter string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			gotReporter = r.URL.Query().Get("r")
			writeJSON(w, map[string]interface{}{"Dataset": []map[string]interface{}{
				{"partnerEconomyCode": 156, "year": 2024, "value": 7.2},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	rates, err := c.TariffsForReporter("POL", "24", "latest")
	require.NoError(t, err)

	// 波兰是欧盟成员, 关税以欧盟 (918) 名义发布
	assert.Equal(t, "918", gotReporter)
	require.Len(t, rates, 1)
	assert.Equal(t, "POL", rates[0].Reporter, "返回结果里保留调用方传入的 ISO3")
	// 伙伴国字典不可用时显示原始代码
	assert.Equal(t, "156", rates[0].Partner)
}

func TestTariffsForReporter_RetriesWithNumericCode(t *testing.T) {
	var dataReporters []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reporters":
			// 字典异常地返回了字母代码
			writeJSON(w, []map[string]interface{}{
				{"code": "RUS", "alpha3Code": "RUS"},
			})
		case "/data":
			rCode := r.URL.Query().Get("r")
			dataReporters = append(dataReporters, rCode)
			if rCode == "RUS" {
				http.Error(w, `{"error":"invalid reporter"}`, http.StatusBadRequest)
				return
			}
			writeJSON(w, map[string]interface{}{"Dataset": []map[string]interface{}{
				{"partnerEconomyCode": 276, "year": 2023, "value": 15.0},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	rates, err := c.TariffsForReporter("RUS", "24", "latest")
	require.NoError(t, err)

	// 字母代码被拒后换成内置的数字代码重试
	assert.Equal(t, []string{"RUS", "643"}, dataReporters)
	require.Len(t, rates, 1)
	assert.InDelta(t, 15.0, rates[0].Rate, 1e-9)
}

func TestTariffsForReporter_MFNFallback(t *testing.T) {
	var indicators []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			i := r.URL.Query().Get("i")
			indicators = append(indicators, i)
			if i == IndicatorPreferential {
				writeJSON(w, map[string]interface{}{"Dataset": []map[string]interface{}{}})
				return
			}
			// MFN 数据: 多个年份, 应该挑最新的
			writeJSON(w, map[string]interface{}{"Dataset": []map[string]interface{}{
				{"year": 2021, "value": 5.0},
				{"year": 2023, "value": 6.5},
				{"year": 2022, "value": 6.0},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	rates, err := c.TariffsForReporter("POL", "24", "latest")
	require.NoError(t, err)

	assert.Equal(t, []string{IndicatorPreferential, IndicatorMFN}, indicators)
	require.Len(t, rates, 1)
	assert.Equal(t, "ALL", rates[0].Partner)
	assert.Equal(t, "2023", rates[0].Year)
	assert.InDelta(t, 6.5, rates[0].Rate, 1e-9)
	assert.Equal(t, IndicatorMFN, rates[0].Flag)
}

func TestExtractList_Shapes(t *testing.T) {
	bare := `[{"a": 1}]`
	assert.Len(t, extractList([]byte(bare)), 1)

	wrapped := `{"Dataset": [{"a": 1}, {"b": 2}]}`
	assert.Len(t, extractList([]byte(wrapped)), 2)

	other := `{"data": [{"a": 1}]}`
	assert.Len(t, extractList([]byte(other)), 1)

	assert.Nil(t, extractList([]byte(`"just a string"`)))
	assert.Nil(t, extractList([]byte(`{"unrelated": 5}`)))
}

func TestRowHelpers(t *testing.T) {
	row := map[string]interface{}{
		"code":  842.0,
		"name":  "USA",
		"value": "12.5",
	}
	assert.Equal(t, "842", rowString(row, "code"))
	assert.Equal(t, "USA", rowString(row, "missing", "name"))
	assert.Equal(t, "", rowString(row, "missing"))

	v, ok := rowFloat(row, "value")
	require.True(t, ok)
	assert.InDelta(t, 12.5, v, 1e-9)
	_, ok = rowFloat(row, "name")
	assert.False(t, ok)
}

func TestLatestPerPartner_KeepsFirstSeenOrder(t *testing.T) {
	items := []model.TariffRate{
		{Partner: "FRA", Year: "2020", Rate: 1},
		{Partner: "POL", Year: "2024", Rate: 2},
		{Partner: "FRA", Year: "2023", Rate: 3},
		{Partner: "CHN", Year: "", Rate: 4},
	}

	out := latestPerPartner(items)
	require.Len(t, out, 3)

	// 伙伴国维持首次出现的顺序, 同伙伴国取最新年份
	assert.Equal(t, "FRA", out[0].Partner)
	assert.Equal(t, "2023", out[0].Year)
	assert.Equal(t, "POL", out[1].Partner)
	assert.Equal(t, "CHN", out[2].Partner)
}
