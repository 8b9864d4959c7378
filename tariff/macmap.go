package tariff

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MacMap 导出文件 (Data 表) 必须包含的列
var requiredColumns = []string{"ReportingCountry", "PartnerCountry", "Year", "ProductCode", "AVE"}

// BuildStats 建索引过程的统计, 方便命令行工具打印
type BuildStats struct {
	TotalRows         int      // 读到的数据行数
	MatchedRows       int      // 通过章节过滤和国家映射的行数
	UnmappedReporters []string // 映射不出 ISO3 的报告国名称 (去重升序)
	UnmappedPartners  []string // 映射不出 ISO3 的伙伴国名称 (去重升序)
}

// BuildIndexFromCSV 从 MacMap 导出的 CSV 构建离线索引
// 只保留 ProductCode 以指定章节开头的行; 同一对国家的多条 HS6 记录取税率平均值,
// 年份取最大值; AVE 允许用逗号做小数点 (欧洲区域设置导出的文件)
func BuildIndexFromCSV(r io.Reader, chapter string) (Index, *BuildStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("读取表头失败: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, nil, fmt.Errorf("CSV 缺少必需的列: %s (现有列: %s)", name, strings.Join(header, ", "))
		}
	}

	type acc struct {
		sum   float64
		count int
		year  int
	}
	agg := make(map[[2]string]*acc)
	stats := &BuildStats{}
	unmappedReporters := make(map[string]bool)
	unmappedPartners := make(map[string]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("读取数据行失败: %w", err)
		}
		stats.TotalRows++

		field := func(name string) string {
			i := col[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		if !strings.HasPrefix(field("ProductCode"), chapter) {
			continue
		}

		repISO3 := NameToISO3(field("ReportingCountry"))
		if repISO3 == "" {
			unmappedReporters[field("ReportingCountry")] = true
			continue
		}
		parISO3 := NameToISO3(field("PartnerCountry"))
		if parISO3 == "" {
			unmappedPartners[field("PartnerCountry")] = true
			continue
		}

		raw := field("AVE")
		if raw == "" {
			continue
		}
		ave, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			continue
		}

		year, _ := strconv.Atoi(field("Year"))

		key := [2]string{repISO3, parISO3}
		a := agg[key]
		if a == nil {
			a = &acc{}
			agg[key] = a
		}
		a.sum += ave
		a.count++
		if year > a.year {
			a.year = year
		}
		stats.MatchedRows++
	}

	idx := Index{chapter: make(map[string]map[string]Entry, len(agg))}
	for key, a := range agg {
		reporter, partner := key[0], key[1]
		if idx[chapter][reporter] == nil {
			idx[chapter][reporter] = make(map[string]Entry)
		}
		rate := a.sum / float64(a.count)
		idx[chapter][reporter][partner] = Entry{Rate: &rate, Year: a.year}
	}

	stats.UnmappedReporters = sortedKeys(unmappedReporters)
	stats.UnmappedPartners = sortedKeys(unmappedPartners)
	return idx, stats, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var parenthetical = regexp.MustCompile(`\s*\(.*?\)`)

// NameToISO3 把 MacMap 里的国家名换成 ISO3 代码, 认不出来返回空串
// 先查别名表, 再查标准名称表; 最后一招是去掉括号再试一次
// 形如 "USA" 的三个大写字母直接视为 ISO3 透传
func NameToISO3(name string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return ""
	}

	if len(raw) == 3 && raw == strings.ToUpper(raw) && isAlpha(raw) {
		return raw
	}

	if fixed, ok := nameAliases[raw]; ok {
		raw = fixed
	}
	if iso3, ok := countryNames[raw]; ok {
		return iso3
	}

	simplified := strings.TrimSpace(parenthetical.ReplaceAllString(raw, ""))
	if simplified != raw {
		if iso3, ok := countryNames[simplified]; ok {
			return iso3
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// nameAliases MacMap / 联合国风格的"长名字"先归一成标准名称
var nameAliases = map[string]string{
	"Bolivia (Plurinational State of)":                     "Bolivia",
	"Venezuela (Bolivarian Republic of)":                   "Venezuela",
	"Iran (Islamic Republic of)":                           "Iran",
	"Lao, People's Democratic Republic":                    "Laos",
	"Lao People's Democratic Republic":                     "Laos",
	"Congo, Democratic Republic of":                        "Democratic Republic of the Congo",
	"Micronesia (Federated States of)":                     "Micronesia",
	"Hong Kong, China Special Administrative Region":       "Hong Kong",
	"Macao, China Special Administrative Region":           "Macao",
	"Taipei, Chinese":                                      "Taiwan",
	"Tanzania, United Republic of":                         "Tanzania",
	"Korea, Republic of":                                   "South Korea",
	"Republic of Korea":                                    "South Korea",
	"Korea, Democratic People's Republic of":               "North Korea",
	"Moldova, Republic of":                                 "Moldova",
	"United Kingdom of Great Britain and Northern Ireland": "United Kingdom",
	"United States of America":                             "United States",
	"Russian Federation":                                   "Russia",
	"Viet Nam":                                             "Vietnam",
	"Türkiye":                                              "Turkey",
	"Syrian Arab Republic":                                 "Syria",
	"Côte d'Ivoire":                                        "Ivory Coast",
	"Czechia":                                              "Czech Republic",
	"Brunei Darussalam":                                    "Brunei",
}

// countryNames 标准英文名 → ISO3, 覆盖 MacMap 导出里出现的国家
var countryNames = map[string]string{
	"Afghanistan":                      "AFG",
	"Albania":                          "ALB",
	"Algeria":                          "DZA",
	"Argentina":                        "ARG",
	"Armenia":                          "ARM",
	"Australia":                        "AUS",
	"Austria":                          "AUT",
	"Azerbaijan":                       "AZE",
	"Bangladesh":                       "BGD",
	"Belarus":                          "BLR",
	"Belgium":                          "BEL",
	"Bolivia":                          "BOL",
	"Brazil":                           "BRA",
	"Brunei":                           "BRN",
	"Bulgaria":                         "BGR",
	"Cabo Verde":                       "CPV",
	"Cambodia":                         "KHM",
	"Canada":                           "CAN",
	"Chile":                            "CHL",
	"China":                            "CHN",
	"Colombia":                         "COL",
	"Costa Rica":                       "CRI",
	"Croatia":                          "HRV",
	"Cuba":                             "CUB",
	"Cyprus":                           "CYP",
	"Czech Republic":                   "CZE",
	"Democratic Republic of the Congo": "COD",
	"Denmark":                          "DNK",
	"Ecuador":                          "ECU",
	"Egypt":                            "EGY",
	"Estonia":                          "EST",
	"Eswatini":                         "SWZ",
	"Ethiopia":                         "ETH",
	"Finland":                          "FIN",
	"France":                           "FRA",
	"Georgia":                          "GEO",
	"Germany":                          "DEU",
	"Ghana":                            "GHA",
	"Greece":                           "GRC",
	"Hong Kong":                        "HKG",
	"Hungary":                          "HUN",
	"Iceland":                          "ISL",
	"India":                            "IND",
	"Indonesia":                        "IDN",
	"Iran":                             "IRN",
	"Iraq":                             "IRQ",
	"Ireland":                          "IRL",
	"Israel":                           "ISR",
	"Italy":                            "ITA",
	"Ivory Coast":                      "CIV",
	"Japan":                            "JPN",
	"Jordan":                           "JOR",
	"Kazakhstan":                       "KAZ",
	"Kenya":                            "KEN",
	"Kuwait":                           "KWT",
	"Laos":                             "LAO",
	"Latvia":                           "LVA",
	"Lebanon":                          "LBN",
	"Lithuania":                        "LTU",
	"Luxembourg":                       "LUX",
	"Macao":                            "MAC",
	"Malaysia":                         "MYS",
	"Malta":                            "MLT",
	"Mexico":                           "MEX",
	"Micronesia":                       "FSM",
	"Moldova":                          "MDA",
	"Mongolia":                         "MNG",
	"Morocco":                          "MAR",
	"Myanmar":                          "MMR",
	"Nepal":                            "NPL",
	"Netherlands":                      "NLD",
	"New Zealand":                      "NZL",
	"Nigeria":                          "NGA",
	"North Korea":                      "PRK",
	"Norway":                           "NOR",
	"Oman":                             "OMN",
	"Pakistan":                         "PAK",
	"Panama":                           "PAN",
	"Paraguay":                         "PRY",
	"Peru":                             "PER",
	"Philippines":                      "PHL",
	"Poland":                           "POL",
	"Portugal":                         "PRT",
	"Qatar":                            "QAT",
	"Romania":                          "ROU",
	"Russia":                           "RUS",
	"Saudi Arabia":                     "SAU",
	"Senegal":                          "SEN",
	"Serbia":                           "SRB",
	"Singapore":                        "SGP",
	"Slovakia":                         "SVK",
	"Slovenia":                         "SVN",
	"South Africa":                     "ZAF",
	"South Korea":                      "KOR",
	"Spain":                            "ESP",
	"Sri Lanka":                        "LKA",
	"Sweden":                           "SWE",
	"Switzerland":                      "CHE",
	"Syria":                            "SYR",
	"Taiwan":                           "TWN",
	"Tanzania":                         "TZA",
	"Thailand":                         "THA",
	"Tunisia":                          "TUN",
	"Turkey":                           "TUR",
	"Ukraine":                          "UKR",
	"United Arab Emirates":             "ARE",
	"United Kingdom":                   "GBR",
	"United States":                    "USA",
	"Uruguay":                          "URY",
	"Uzbekistan":                       "UZB",
	"Venezuela":                        "VEN",
	"Vietnam":                          "VNM",
	"Zambia":                           "ZMB",
	"Zimbabwe":                         "ZWE",
}
