package tariff

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tariff-map-system/model"
)

// DefaultWTOBaseURL WTO Timeseries API v1 的正式地址
const DefaultWTOBaseURL = "https://api.wto.org/timeseries/v1"

// 指标代码: 优先用带伙伴国维度的最低优惠从价税率 (HS6),
// 查不到再退回不分伙伴国的 MFN 简单平均
const (
	IndicatorPreferential = "HS_P_0070"
	IndicatorMFN          = "HS_A_0010"
)

// 欧盟成员的优惠关税统一发布在 "European Union" (代码 918) 名下
const euReporterCode = "918"

var euMembers = map[string]bool{
	"AUT": true, "BEL": true, "BGR": true, "HRV": true, "CYP": true, "CZE": true,
	"DNK": true, "EST": true, "FIN": true, "FRA": true, "DEU": true, "GRC": true,
	"HUN": true, "IRL": true, "ITA": true, "LVA": true, "LTU": true, "LUX": true,
	"MLT": true, "NLD": true, "POL": true, "PRT": true, "ROU": true, "SVK": true,
	"SVN": true, "ESP": true, "SWE": true,
}

// 报告国 ISO3 → WTO 数字代码的保底映射, 字典接口不可用时用
var iso3ToWTOCode = map[string]string{
	"POL": "616",
	"DEU": "276",
	"FRA": "250",
	"ITA": "380",
	"ESP": "724",
	"PRT": "620",
	"NLD": "528",
	"BEL": "056",
	"CZE": "203",
	"SVK": "703",
	"HUN": "348",
	"LTU": "440",
	"LVA": "428",
	"EST": "233",
	"USA": "842",
	"CHN": "156",
	"GBR": "826",
	"RUS": "643",
	"UKR": "804",
}

// Client WTO Timeseries API 的客户端
// 字典接口 (reporters/partners) 懒加载并缓存; 字典拿不到时退回内置映射,
// 网络抖动最多让伙伴国显示成数字代码, 不会让整个请求失败
type Client struct {
	BaseURL   string
	Key       string // Ocp-Apim-Subscription-Key
	Language  int    // 1 = 英语
	Format    string // json
	Indicator string // 优先指标, 空则用 IndicatorPreferential
	HTTP      *http.Client

	mu             sync.Mutex
	reporterCodes  map[string]string // ISO3 -> WTO 代码
	partnerByCode  map[string]string // WTO 代码 -> ISO3
	reportersReady bool
	partnersReady  bool
	reportersPath  string
	partnersPath   string

	diagMu     sync.Mutex
	lastURL    string
	lastStatus int
}

// NewClient 用订阅 key 构造客户端
func NewClient(key string) *Client {
	return &Client{
		BaseURL:       DefaultWTOBaseURL,
		Key:           key,
		Language:      1,
		Format:        "json",
		HTTP:          &http.Client{Timeout: 60 * time.Second},
		reporterCodes: make(map[string]string),
		partnerByCode: make(map[string]string),
	}
}

// TariffsForReporter 查某报告国在一个 HS 章节上对各伙伴国的关税
// year 传 "latest" 时拉全部年份, 然后每个伙伴国只保留最新一年
// 优惠税率查不到任何行时退回 MFN, 此时只有一条伙伴国为 "ALL" 的记录
func (c *Client) TariffsForReporter(reporterISO3, chapter, year string) ([]model.TariffRate, error) {
	iso3 := normalizeISO3(reporterISO3)
	rCode := c.reporterCode(iso3)

	ps := year
	if strings.EqualFold(year, "latest") {
		ps = "all"
	}

	indicator := c.Indicator
	if indicator == "" {
		indicator = IndicatorPreferential
	}

	params := url.Values{}
	params.Set("i", indicator)
	params.Set("r", rCode)
	params.Set("p", "all")
	params.Set("px", "HS")
	params.Set("pc", chapter)
	params.Set("ps", ps)
	params.Set("spc", "true")
	params.Set("head", "M")
	params.Set("meta", "false")

	body, status, err := c.get("data", params)
	if err != nil {
		return nil, err
	}
	// 有些部署不认字母形式的报告国代码, 换成数字代码重试一次
	if status >= 400 && isAlphaCode(rCode) {
		if fallback, ok := iso3ToWTOCode[iso3]; ok {
			params.Set("r", fallback)
			body, status, err = c.get("data", params)
			if err != nil {
				return nil, err
			}
		}
	}

	var items []model.TariffRate
	if status < 400 {
		items = c.parseDataRows(extractList(body), iso3, chapter, indicator)
	}
	if strings.EqualFold(year, "latest") {
		items = latestPerPartner(items)
	}
	if len(items) > 0 {
		return items, nil
	}

	return c.mfnFallback(iso3, rCode, chapter, ps)
}

// mfnFallback MFN 简单平均没有伙伴国维度, 挑最新年份返回一条 "ALL" 记录
func (c *Client) mfnFallback(iso3, rCode, chapter, ps string) ([]model.TariffRate, error) {
	params := url.Values{}
	params.Set("i", IndicatorMFN)
	params.Set("r", rCode)
	params.Set("px", "HS")
	params.Set("pc", chapter)
	params.Set("ps", ps)
	params.Set("head", "M")
	params.Set("meta", "false")

	body, status, err := c.get("data", params)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, nil
	}

	bestYear := -1
	var best *model.TariffRate
	for _, row := range extractList(body) {
		value, ok := rowFloat(row, "value", "Value")
		if !ok {
			continue
		}
		yr := rowString(row, "year", "time")
		yrInt, err := strconv.Atoi(yr)
		if err != nil {
			yrInt = -1
		}
		if yrInt > bestYear {
			bestYear = yrInt
			unit := rowString(row, "unitCode")
			if unit == "" {
				unit = "%"
			}
			best = &model.TariffRate{
				Reporter: iso3,
				Partner:  "ALL",
				Rate:     value,
				Year:     yr,
				Unit:     unit,
				Flag:     IndicatorMFN,
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	return []model.TariffRate{*best}, nil
}

// parseDataRows 容忍几种见过的行格式: 字段名大小写、编号字段是数字还是字符串
func (c *Client) parseDataRows(rows []map[string]interface{}, reporterISO3, chapter, indicator string) []model.TariffRate {
	items := make([]model.TariffRate, 0, len(rows))
	for _, row := range rows {
		partnerCode := rowString(row, "partnerEconomyCode", "p", "partner")
		if partnerCode == "" {
			continue
		}
		value, ok := rowFloat(row, "value", "Value")
		if !ok {
			continue
		}

		unit := rowString(row, "unitCode")
		if unit == "" {
			unit = "%"
		}
		items = append(items, model.TariffRate{
			Reporter: reporterISO3,
			Partner:  c.partnerISO3(partnerCode),
			Rate:     value,
			Year:     rowString(row, "year", "time"),
			Unit:     unit,
			Flag:     indicator,
		})
	}
	return items
}

// latestPerPartner 每个伙伴国只保留数据年份最新的一条, 维持首次出现的顺序
func latestPerPartner(items []model.TariffRate) []model.TariffRate {
	if len(items) == 0 {
		return items
	}

	order := make([]string, 0, len(items))
	best := make(map[string]model.TariffRate, len(items))
	bestYear := make(map[string]int, len(items))

	for _, it := range items {
		yr, err := strconv.Atoi(it.Year)
		if err != nil {
			yr = -1
		}
		prev, seen := bestYear[it.Partner]
		if !seen {
			order = append(order, it.Partner)
		}
		if !seen || yr > prev {
			best[it.Partner] = it
			bestYear[it.Partner] = yr
		}
	}

	out := make([]model.TariffRate, 0, len(order))
	for _, p := range order {
		out = append(out, best[p])
	}
	return out
}

// reporterCode 报告国 ISO3 → 请求里用的 r 参数
// 欧盟成员直接换成 918; 其余先查字典缓存, 再查保底映射, 都没有就原样透传
func (c *Client) reporterCode(iso3 string) string {
	if euMembers[iso3] {
		return euReporterCode
	}

	c.loadReporters()
	c.mu.Lock()
	defer c.mu.Unlock()
	if code, ok := c.reporterCodes[iso3]; ok {
		return code
	}
	return iso3
}

// partnerISO3 WTO 伙伴国代码 → ISO3, 字典里没有就返回大写的原代码
func (c *Client) partnerISO3(code string) string {
	c.loadPartners()
	c.mu.Lock()
	defer c.mu.Unlock()
	if iso3, ok := c.partnerByCode[code]; ok {
		return iso3
	}
	return strings.ToUpper(code)
}

// loadReporters 懒加载报告国字典, 失败时静默退回内置映射
func (c *Client) loadReporters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reportersReady {
		return
	}
	c.reportersReady = true

	path := c.resolvePathLocked([]string{"reporters", "reporting_economies", "reportingEconomies"}, &c.reportersPath)
	if path != "" {
		if body, status, err := c.get(path, nil); err == nil && status < 400 {
			for _, rec := range extractList(body) {
				iso3 := normalizeISO3(rowString(rec, "alpha3Code", "alpha3"))
				code := rowString(rec, "code")
				if iso3 != "" && code != "" {
					c.reporterCodes[iso3] = code
				}
			}
		}
	}
	for iso3, code := range iso3ToWTOCode {
		if _, ok := c.reporterCodes[iso3]; !ok {
			c.reporterCodes[iso3] = code
		}
	}
}

// loadPartners 懒加载伙伴国字典
func (c *Client) loadPartners() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.partnersReady {
		return
	}
	c.partnersReady = true

	path := c.resolvePathLocked([]string{"partners", "partner_economies", "partnerEconomies"}, &c.partnersPath)
	if path == "" {
		return
	}
	if body, status, err := c.get(path, nil); err == nil && status < 400 {
		for _, rec := range extractList(body) {
			iso3 := normalizeISO3(rowString(rec, "alpha3Code", "alpha3"))
			code := rowString(rec, "code")
			if iso3 != "" && code != "" {
				c.partnerByCode[code] = iso3
			}
		}
	}
}

// resolvePathLocked 字典接口在不同部署下路径不一样, 挨个试第一个能通的
func (c *Client) resolvePathLocked(candidates []string, cache *string) string {
	if *cache != "" {
		return *cache
	}
	for _, candidate := range candidates {
		if _, status, err := c.get(candidate, nil); err == nil && status < 400 {
			*cache = candidate
			return candidate
		}
	}
	return ""
}

// get 发送请求并返回响应体和状态码, 只有传输层故障才返回 error
func (c *Client) get(path string, params url.Values) ([]byte, int, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	u := base + "/" + strings.TrimLeft(path, "/")

	q := url.Values{}
	q.Set("fmt", c.Format)
	q.Set("lang", strconv.Itoa(c.Language))
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	full := u + "?" + q.Encode()

	req, err := http.NewRequest(http.MethodGet, full, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.recordRequest(full, 0)
		return nil, 0, fmt.Errorf("请求 WTO 接口失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	c.recordRequest(full, resp.StatusCode)
	return body, resp.StatusCode, nil
}

func (c *Client) recordRequest(url string, status int) {
	c.diagMu.Lock()
	c.lastURL, c.lastStatus = url, status
	c.diagMu.Unlock()
}

// LastRequest 最近一次请求的地址和状态码, 排查接口问题用
func (c *Client) LastRequest() (string, int) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return c.lastURL, c.lastStatus
}

// extractList 响应可能是裸数组, 也可能包在几种不同的键下面
func extractList(body []byte) []map[string]interface{} {
	var direct []map[string]interface{}
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil
	}
	for _, key := range []string{"data", "Dataset", "results", "reporters", "partners", "items"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var list []map[string]interface{}
		if err := json.Unmarshal(raw, &list); err == nil {
			return list
		}
	}
	return nil
}

// rowString 依次尝试几个键, 数字值转成不带小数点的字符串
func rowString(row map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := row[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func rowFloat(row map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := row[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func isAlphaCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func normalizeISO3(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
