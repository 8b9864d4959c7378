package model

// TariffRate 某报告国对某伙伴国在一个 HS 章节上的进口关税税率
type TariffRate struct {
	Reporter string  `json:"reporter"`       // 报告国 ISO3
	Partner  string  `json:"partner"`        // 伙伴国 ISO3
	Rate     float64 `json:"rate"`           // 从价税率 (百分数, 30 表示 30%)
	Year     string  `json:"year"`           // 数据年份
	Unit     string  `json:"unit"`           // 计量单位, 一般是 "percent"
	Flag     string  `json:"flag,omitempty"` // 备注标记 (如 MFN 回退)
}
