package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tariff-map-system/tariff"
)

var (
	inputPath  string
	outputPath string
	chapter    string
)

var rootCmd = &cobra.Command{
	Use:   "tariffindex",
	Short: "把 MacMap 导出的关税 CSV 构建成离线索引",
	Long: `读取 MacMap 批量导出的关税 CSV, 按 HS 章节过滤后聚合成
章节 -> 报告国 -> 伙伴国 的离线索引 JSON。
同一对国家有多条税目时取平均税率, 年份取最新。
输出文件已存在时增量合并, 新数据覆盖旧数据。`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "MacMap CSV 文件路径 (必填)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "data/tariffs/tobacco_index.json", "索引输出路径")
	rootCmd.Flags().StringVarP(&chapter, "chapter", "c", "24", "HS 章节")
	_ = rootCmd.MarkFlagRequired("input")
}

func run(cmd *cobra.Command, args []string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("打开 CSV 失败: %w", err)
	}
	defer file.Close()

	idx, stats, err := tariff.BuildIndexFromCSV(file, chapter)
	if err != nil {
		return err
	}

	fmt.Printf("读取 %d 行, 命中章节 %s 的 %d 行\n", stats.TotalRows, chapter, stats.MatchedRows)
	if len(stats.UnmappedReporters) > 0 {
		fmt.Printf("无法识别的报告国: %v\n", stats.UnmappedReporters)
	}
	if len(stats.UnmappedPartners) > 0 {
		fmt.Printf("无法识别的伙伴国: %v\n", stats.UnmappedPartners)
	}

	// 输出文件已有索引时增量合并
	final := idx
	if existing, err := tariff.LoadIndex(outputPath); err == nil {
		existing.Merge(idx)
		final = existing
		fmt.Println("已与现有索引合并")
	}

	if err := tariff.WriteIndex(outputPath, final); err != nil {
		return err
	}

	fmt.Printf("索引已写入 %s, 章节 %s 共 %d 个报告国\n",
		outputPath, chapter, len(final.Reporters(chapter)))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
