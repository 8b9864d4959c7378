package algo

import (
	"tariff-map-system/model"
	"tariff-map-system/utils"
)

// Graph 物流网络的隐式带权图
// 不物化边表：邻接关系按节点种类即时推导，全网 n 个设施如果存边要 O(n²)，
// 即时推导只存目录本身。拓扑只由节点目录决定，系数只影响每条边的权重
//
// 连边规则:
//   - 国家锚点 ↔ 本国每个设施: 公路 (强制的"最后一公里")
//   - 海港 ↔ 海港: 海运 (全球互通)
//   - 空运枢纽 ↔ 空运枢纽: 空运 (全球互通)
//   - 综合枢纽 ↔ 本国任意设施: 公路 (国内中转)
//   - 锚点 ↔ 锚点: 公路，但仅当两国中至少一国没有任何设施 (孤立国家兜底)
//
// 没启用的运输方式直接不产边；同一国家的两个普通设施之间没有直连公路，
// 必须经过锚点或综合枢纽
type Graph struct {
	cat     *Catalog
	factors model.ModeFactors
}

// NewGraph 在节点目录上按给定系数构建隐式图
func NewGraph(cat *Catalog, factors model.ModeFactors) *Graph {
	return &Graph{cat: cat, factors: factors}
}

// Factors 返回本图使用的系数集合
func (g *Graph) Factors() model.ModeFactors {
	return g.factors
}

// ForNeighbors 按固定顺序枚举 from 的全部邻接边: 先公路、再海运、后空运，
// 每种方式内部按目录里的 ID 升序。顺序固定是路线可复现的前提
// 回调收到目标节点、运输方式位掩码和两点大圆距离 (公里)
func (g *Graph) ForNeighbors(from *model.Node, fn func(to *model.Node, mode int, distKm float64)) {
	switch from.Kind {
	case model.KindCountryAnchor:
		g.anchorNeighbors(from, fn)
	case model.KindSeaport:
		g.facilityRoadNeighbors(from, fn)
		g.globalNeighbors(from, model.ModeSea, g.cat.seaports, fn)
	case model.KindAirCargo:
		g.facilityRoadNeighbors(from, fn)
		g.globalNeighbors(from, model.ModeAir, g.cat.airHubs, fn)
	case model.KindHub:
		g.hubRoadNeighbors(from, fn)
	}
}

// anchorNeighbors 锚点的邻接: 本国全部设施，外加孤立国家间的锚点直连
func (g *Graph) anchorNeighbors(anchor *model.Node, fn func(*model.Node, int, float64)) {
	if !g.factors.Enabled(model.ModeRoad) {
		return
	}

	for _, f := range g.cat.byCountry[anchor.Country] {
		fn(f, model.ModeRoad, g.distance(anchor, f))
	}

	// 本国没有设施时可以直连所有锚点，否则只能连到同样没有设施的国家
	peers := g.cat.emptyAnchors
	if !g.cat.HasFacilities(anchor.Country) {
		peers = g.cat.anchorList
	}
	for _, a := range peers {
		if a.ID == anchor.ID {
			continue
		}
		fn(a, model.ModeRoad, g.distance(anchor, a))
	}
}

// facilityRoadNeighbors 海港/空运枢纽的公路邻接: 本国锚点 + 本国综合枢纽
func (g *Graph) facilityRoadNeighbors(f *model.Node, fn func(*model.Node, int, float64)) {
	if !g.factors.Enabled(model.ModeRoad) {
		return
	}

	if anchor, ok := g.cat.anchors[f.Country]; ok {
		fn(anchor, model.ModeRoad, g.distance(f, anchor))
	}
	for _, hub := range g.cat.hubsByCountry[f.Country] {
		if hub.ID == f.ID {
			continue
		}
		fn(hub, model.ModeRoad, g.distance(f, hub))
	}
}

// hubRoadNeighbors 综合枢纽的公路邻接: 本国锚点 + 本国全部其他设施
func (g *Graph) hubRoadNeighbors(hub *model.Node, fn func(*model.Node, int, float64)) {
	if !g.factors.Enabled(model.ModeRoad) {
		return
	}

	if anchor, ok := g.cat.anchors[hub.Country]; ok {
		fn(anchor, model.ModeRoad, g.distance(hub, anchor))
	}
	for _, f := range g.cat.byCountry[hub.Country] {
		if f.ID == hub.ID {
			continue
		}
		fn(f, model.ModeRoad, g.distance(hub, f))
	}
}

// globalNeighbors 同种设施的全球互通 (海运/空运)
func (g *Graph) globalNeighbors(from *model.Node, mode int, peers []*model.Node, fn func(*model.Node, int, float64)) {
	if !g.factors.Enabled(mode) {
		return
	}

	for _, p := range peers {
		if p.ID == from.ID {
			continue
		}
		fn(p, mode, g.distance(from, p))
	}
}

func (g *Graph) distance(a, b *model.Node) float64 {
	return utils.HaversineDistance(a.Location(), b.Location())
}
