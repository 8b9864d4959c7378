package tariff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `ReportingCountry,PartnerCountry,Year,ProductCode,AVE
United States of America,France,2023,240110,"0,30"
United States of America,France,2024,240220,0.40
United States of America,Poland,2024,240110,0.12
Germany,United States of America,2022,240399,0.08
Germany,United States of America,2022,100110,9.99
Atlantis,France,2024,240110,0.50
United States of America,Mu,2024,240110,0.50
United States of America,France,2024,240330,
`

func TestBuildIndexFromCSV(t *testing.T) {
	idx, stats, err := BuildIndexFromCSV(strings.NewReader(sampleCSV), "24")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 8, stats.TotalRows)
	// 小麦那行 (HS 10) 被章节过滤掉, 两行未知国家被跳过, 一行缺 AVE
	assert.Equal(t, 4, stats.MatchedRows)
	assert.Equal(t, []string{"Atlantis"}, stats.UnmappedReporters)
	assert.Equal(t, []string{"Mu"}, stats.UnmappedPartners)

	// 美国→法国: 两条 HS6 记录取平均 (0.30 和 0.40), 年份取最大
	entry := idx["24"]["USA"]["FRA"]
	require.NotNil(t, entry.Rate)
	assert.InDelta(t, 0.35, *entry.Rate, 1e-9)
	assert.Equal(t, 2024, entry.Year)

	entry = idx["24"]["USA"]["POL"]
	require.NotNil(t, entry.Rate)
	assert.InDelta(t, 0.12, *entry.Rate, 1e-9)

	entry = idx["24"]["DEU"]["USA"]
	require.NotNil(t, entry.Rate)
	assert.InDelta(t, 0.08, *entry.Rate, 1e-9)
	assert.Equal(t, 2022, entry.Year)
}

func TestBuildIndexFromCSV_MissingColumn(t *testing.T) {
	csv := "ReportingCountry,PartnerCountry,Year\nGermany,France,2024\n"
	_, _, err := BuildIndexFromCSV(strings.NewReader(csv), "24")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProductCode")
}

func TestNameToISO3(t *testing.T) {
	cases := map[string]string{
		"Germany":                          "DEU",
		"United States of America":         "USA",
		"United States":                    "USA",
		"Korea, Republic of":               "KOR",
		"Bolivia (Plurinational State of)": "BOL",
		"Taipei, Chinese":                  "TWN",
		"Viet Nam":                         "VNM",
		"Türkiye":                          "TUR",
		"Hong Kong, China Special Administrative Region": "HKG",
		"USA":      "USA", // ISO3 直接透传
		"Atlantis": "",
		"":         "",
		"  Japan ": "JPN",
	}
	for name, want := range cases {
		assert.Equal(t, want, NameToISO3(name), "name=%q", name)
	}
}
