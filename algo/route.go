package algo

import (
	"fmt"

	"tariff-map-system/model"
)

// RouteSummary 整条路线的汇总
type RouteSummary struct {
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalWeight     float64 `json:"total_weight"`
}

// RouteLeg 路线中的一段
type RouteLeg struct {
	Source     string  `json:"source"`      // 起点节点 ID
	Target     string  `json:"target"`      // 终点节点 ID
	Transport  string  `json:"transport"`   // road / sea / air
	DistanceKm float64 `json:"distance_km"` // 大圆距离 (公里)
}

// RouteResult 路线规划结果
// Path 至少含一个节点, len(Legs) == len(Path)-1, 第 i 段连接第 i 和 i+1 个节点
// 汇总值就是各段的和: 总成本 = Σ 距离×系数
type RouteResult struct {
	Path    []model.Node
	Legs    []RouteLeg
	Summary RouteSummary
}

// PlanRoute 规划 source 国到 target 国的最小成本多式联运路线
// 这里是参数校验的唯一入口: 先查系数 (必须有限非负, 0 合法)，再查两个 ISO3,
// 校验全过后才构图搜索。起点终点相同返回单节点零成本路线
func PlanRoute(cat *Catalog, sourceISO3, targetISO3 string, factors model.ModeFactors) (*RouteResult, error) {
	if mode, ok := factors.Valid(); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFactor, mode)
	}

	source, err := cat.CountryAnchor(sourceISO3)
	if err != nil {
		return nil, err
	}
	target, err := cat.CountryAnchor(targetISO3)
	if err != nil {
		return nil, err
	}

	g := NewGraph(cat, factors)
	res, err := g.Dijkstra(source, target)
	if err != nil {
		return nil, err
	}

	return assembleRoute(cat, res, factors)
}

// assembleRoute 把搜索结果展开成带节点详情和分段信息的路线
func assembleRoute(cat *Catalog, res PathResult, factors model.ModeFactors) (*RouteResult, error) {
	out := &RouteResult{
		Path: make([]model.Node, 0, len(res.Path)),
		Legs: make([]RouteLeg, 0, len(res.Modes)),
	}

	for _, id := range res.Path {
		node, ok := cat.Node(id)
		if !ok {
			return nil, fmt.Errorf("路径中的节点 %s 不在目录里", id)
		}
		out.Path = append(out.Path, *node)
	}

	for i, mode := range res.Modes {
		d := res.Dists[i]
		out.Legs = append(out.Legs, RouteLeg{
			Source:     res.Path[i],
			Target:     res.Path[i+1],
			Transport:  model.ModeName(mode),
			DistanceKm: d,
		})
		out.Summary.TotalDistanceKm += d
		out.Summary.TotalWeight += d * factors.Factor(mode)
	}
	return out, nil
}

// FormatRoute 把路线格式化成可读的多行文本 (日志和命令行排查用)
func FormatRoute(r *RouteResult) string {
	if r == nil || len(r.Path) == 0 {
		return "未找到路线"
	}

	output := fmt.Sprintf("总距离: %.1f 公里, 总成本: %.2f\n",
		r.Summary.TotalDistanceKm, r.Summary.TotalWeight)
	output += "途经:\n"

	for i, node := range r.Path {
		output += fmt.Sprintf("%d. %s (%s)\n", i+1, node.Name, node.ID)
		if i < len(r.Legs) {
			leg := r.Legs[i]
			output += fmt.Sprintf("   %s %.1f 公里\n", transportLabel(leg.Transport), leg.DistanceKm)
		}
	}
	return output
}

func transportLabel(transport string) string {
	switch transport {
	case model.TransportRoad:
		return "公路"
	case model.TransportSea:
		return "海运"
	case model.TransportAir:
		return "空运"
	default:
		return transport
	}
}
