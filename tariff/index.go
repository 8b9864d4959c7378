package tariff

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tariff-map-system/model"
)

// Entry 索引里的一条税率记录
// MacMap 导出的税率是小数 (0.30 = 30%)，对外输出前要乘 100
type Entry struct {
	Rate *float64 `json:"rate"`
	Year int      `json:"year"`
}

// Index 离线关税索引, 按 HS 章节 → 报告国 ISO3 → 伙伴国 ISO3 组织
// 启动时从 JSON 文件加载一次, 之后只读
type Index map[string]map[string]map[string]Entry

// LoadIndex 从 JSON 文件加载离线索引
func LoadIndex(path string) (Index, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取索引文件失败: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(file, &idx); err != nil {
		return nil, fmt.Errorf("解析索引文件失败: %w", err)
	}
	return idx, nil
}

// WriteIndex 把索引写成 JSON 文件, 父目录不存在时自动创建
func WriteIndex(path string, idx Index) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化索引失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入索引文件失败: %w", err)
	}
	return nil
}

// Merge 把 src 合并进当前索引, 相同 章节/报告国/伙伴国 的记录以 src 为准
func (idx Index) Merge(src Index) {
	for chapter, reporters := range src {
		if idx[chapter] == nil {
			idx[chapter] = make(map[string]map[string]Entry)
		}
		for reporter, partners := range reporters {
			if idx[chapter][reporter] == nil {
				idx[chapter][reporter] = make(map[string]Entry, len(partners))
			}
			for partner, entry := range partners {
				idx[chapter][reporter][partner] = entry
			}
		}
	}
}

// Reporters 返回某章节下全部报告国 (升序)
func (idx Index) Reporters(chapter string) []string {
	out := make([]string, 0, len(idx[chapter]))
	for reporter := range idx[chapter] {
		out = append(out, reporter)
	}
	sort.Strings(out)
	return out
}

// RatesFor 取某报告国在某章节下对所有伙伴国的税率
// 伙伴国按 ISO3 升序排列; 没有税率值的记录跳过; 税率换算成百分数
func (idx Index) RatesFor(chapter, reporter string) []model.TariffRate {
	partners := idx[chapter][normalizeISO3(reporter)]
	if len(partners) == 0 {
		return nil
	}

	codes := make([]string, 0, len(partners))
	for p := range partners {
		codes = append(codes, p)
	}
	sort.Strings(codes)

	rates := make([]model.TariffRate, 0, len(codes))
	for _, partner := range codes {
		entry := partners[partner]
		if entry.Rate == nil {
			continue
		}

		year := ""
		if entry.Year > 0 {
			year = strconv.Itoa(entry.Year)
		}
		rates = append(rates, model.TariffRate{
			Reporter: normalizeISO3(reporter),
			Partner:  partner,
			Rate:     *entry.Rate * 100.0,
			Year:     year,
			Unit:     "percent",
		})
	}
	return rates
}

// LatestYear 一组税率里最新的数据年份, 都没有年份时返回空串
func LatestYear(rates []model.TariffRate) string {
	best := -1
	for _, r := range rates {
		if y, err := strconv.Atoi(r.Year); err == nil && y > best {
			best = y
		}
	}
	if best < 0 {
		return ""
	}
	return strconv.Itoa(best)
}
