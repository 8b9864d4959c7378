package algo

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"

	"tariff-map-system/model"
	"tariff-map-system/utils"
)

// 空间索引参数: 2 维 (纬度/经度)，节点的最小外接矩形用一个小容差撑开
const (
	rtreeDimensions  = 2
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	rtreeTolerance   = 0.01
)

// facilityItem 把节点包装成 rtreego 能索引的对象
type facilityItem struct {
	node *model.Node
	rect *rtreego.Rect
}

func (it *facilityItem) Bounds() *rtreego.Rect {
	return it.rect
}

// Catalog 节点目录：国家锚点 + 全部物流设施的只读注册表
// 进程启动时构建一次，之后不再修改，可被任意多个请求并发读取
// 所有切片都按节点 ID 升序排好，保证图的邻接枚举顺序固定
type Catalog struct {
	nodes   map[string]*model.Node // ID -> 节点 (锚点和设施都在)
	anchors map[string]*model.Node // ISO3 -> 国家锚点
	names   map[string]string      // ISO3 -> 国家名

	byCountry     map[string][]*model.Node // ISO3 -> 该国全部设施
	hubsByCountry map[string][]*model.Node // ISO3 -> 该国综合枢纽

	anchorList   []*model.Node // 全部锚点
	emptyAnchors []*model.Node // 没有任何设施的国家的锚点
	seaports     []*model.Node // 全部海港
	airHubs      []*model.Node // 全部空运枢纽
	nodeList     []model.Node  // 固定顺序的全量列表 (对外遍历用)

	index *rtreego.Rtree // 设施空间索引 (最近设施查询)
}

// ReadNetworkData 读取物流网络参考数据 JSON 文件
func ReadNetworkData(filepath string) (model.NetworkData, error) {
	var data model.NetworkData

	file, err := os.ReadFile(filepath)
	if err != nil {
		return data, fmt.Errorf("读取文件失败: %w", err)
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return data, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return data, nil
}

// LoadFromJSON 从 JSON 文件加载物流网络并构建节点目录
func LoadFromJSON(filepath string) (*Catalog, error) {
	data, err := ReadNetworkData(filepath)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(data.Countries, data.Facilities)
}

// MergeCountries 合并两份国家列表，primary 里已有的 ISO3 优先保留
// 用于把 GeoJSON 推导出的锚点补充到人工维护的参考数据之后
func MergeCountries(primary, extra []model.Country) []model.Country {
	merged := make([]model.Country, 0, len(primary)+len(extra))
	seen := make(map[string]bool, len(primary))

	for _, c := range primary {
		iso3 := normalizeISO3(c.ISO3)
		if iso3 == "" || seen[iso3] {
			continue
		}
		seen[iso3] = true
		c.ISO3 = iso3
		merged = append(merged, c)
	}
	for _, c := range extra {
		iso3 := normalizeISO3(c.ISO3)
		if iso3 == "" || seen[iso3] {
			continue
		}
		seen[iso3] = true
		c.ISO3 = iso3
		merged = append(merged, c)
	}
	return merged
}

// BuildCatalog 校验参考数据并构建节点目录
// 每个国家恰好生成一个锚点；坐标越界、ID 重复会直接报错，
// 归属国未知或种类未知的设施会被跳过并记录警告
func BuildCatalog(countries []model.Country, facilities []model.Node) (*Catalog, error) {
	c := &Catalog{
		nodes:         make(map[string]*model.Node),
		anchors:       make(map[string]*model.Node),
		names:         make(map[string]string),
		byCountry:     make(map[string][]*model.Node),
		hubsByCountry: make(map[string][]*model.Node),
		index:         rtreego.NewTree(rtreeDimensions, rtreeMinChildren, rtreeMaxChildren),
	}

	// 先建国家锚点, 锚点 ID 就是 ISO3
	for _, country := range countries {
		iso3 := normalizeISO3(country.ISO3)
		if iso3 == "" {
			return nil, fmt.Errorf("国家条目缺少 ISO3 代码: %q", country.Name)
		}
		if _, ok := c.anchors[iso3]; ok {
			return nil, fmt.Errorf("国家 %s 出现了多次", iso3)
		}
		if err := checkCoordinates(country.Lon, country.Lat); err != nil {
			return nil, fmt.Errorf("国家 %s 坐标非法: %w", iso3, err)
		}

		anchor := &model.Node{
			ID:      iso3,
			Kind:    model.KindCountryAnchor,
			Name:    country.Name,
			Country: iso3,
			Lon:     country.Lon,
			Lat:     country.Lat,
		}
		c.nodes[iso3] = anchor
		c.anchors[iso3] = anchor
		c.names[iso3] = country.Name
		c.anchorList = append(c.anchorList, anchor)
		c.byCountry[iso3] = nil
	}

	// 再挂设施
	for i := range facilities {
		f := facilities[i]
		f.Country = normalizeISO3(f.Country)

		if f.ID == "" {
			return nil, fmt.Errorf("设施 %q 缺少 ID", f.Name)
		}
		if _, ok := c.nodes[f.ID]; ok {
			return nil, fmt.Errorf("节点 ID %s 重复", f.ID)
		}
		if err := checkCoordinates(f.Lon, f.Lat); err != nil {
			return nil, fmt.Errorf("设施 %s 坐标非法: %w", f.ID, err)
		}
		if _, ok := c.anchors[f.Country]; !ok {
			log.Printf("警告: 设施 %s 的国家 %q 不在国家列表中, 已跳过", f.ID, f.Country)
			continue
		}

		node := &model.Node{}
		*node = f

		switch node.Kind {
		case model.KindSeaport:
			c.seaports = append(c.seaports, node)
		case model.KindAirCargo:
			c.airHubs = append(c.airHubs, node)
		case model.KindHub:
			c.hubsByCountry[node.Country] = append(c.hubsByCountry[node.Country], node)
		default:
			log.Printf("警告: 设施 %s 的种类 %q 无法识别, 已跳过", node.ID, node.Kind)
			continue
		}

		c.nodes[node.ID] = node
		c.byCountry[node.Country] = append(c.byCountry[node.Country], node)

		p := rtreego.Point{node.Lat, node.Lon}
		c.index.Insert(&facilityItem{node: node, rect: p.ToRect(rtreeTolerance)})
	}

	// 统一按 ID 排序，枚举顺序从此固定
	sortNodes(c.anchorList)
	sortNodes(c.seaports)
	sortNodes(c.airHubs)
	for iso3 := range c.byCountry {
		sortNodes(c.byCountry[iso3])
	}
	for iso3 := range c.hubsByCountry {
		sortNodes(c.hubsByCountry[iso3])
	}

	for _, a := range c.anchorList {
		if len(c.byCountry[a.Country]) == 0 {
			c.emptyAnchors = append(c.emptyAnchors, a)
		}
		c.nodeList = append(c.nodeList, *a)
	}
	for _, a := range c.anchorList {
		for _, f := range c.byCountry[a.Country] {
			c.nodeList = append(c.nodeList, *f)
		}
	}

	return c, nil
}

// CountryAnchor 按 ISO3 查国家锚点，大小写不敏感
func (c *Catalog) CountryAnchor(iso3 string) (*model.Node, error) {
	code := normalizeISO3(iso3)
	anchor, ok := c.anchors[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, code)
	}
	return anchor, nil
}

// Node 按 ID 查节点
func (c *Catalog) Node(id string) (*model.Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes 返回全部节点的副本，锚点在前设施在后，顺序固定
func (c *Catalog) Nodes() []model.Node {
	out := make([]model.Node, len(c.nodeList))
	copy(out, c.nodeList)
	return out
}

// Anchors 返回全部国家锚点 (按 ISO3 升序)
func (c *Catalog) Anchors() []*model.Node {
	return c.anchorList
}

// FacilitiesInCountry 返回某国全部设施 (按 ID 升序)
func (c *Catalog) FacilitiesInCountry(iso3 string) []*model.Node {
	return c.byCountry[normalizeISO3(iso3)]
}

// HasFacilities 该国是否拥有至少一个物流设施
func (c *Catalog) HasFacilities(iso3 string) bool {
	return len(c.byCountry[normalizeISO3(iso3)]) > 0
}

// Seaports 返回全部海港 (按 ID 升序)
func (c *Catalog) Seaports() []*model.Node {
	return c.seaports
}

// AirCargoHubs 返回全部空运枢纽 (按 ID 升序)
func (c *Catalog) AirCargoHubs() []*model.Node {
	return c.airHubs
}

// CountryName 返回 ISO3 对应的国家名，没有时返回空串
func (c *Catalog) CountryName(iso3 string) string {
	return c.names[normalizeISO3(iso3)]
}

// CountryCount 国家 (锚点) 数量
func (c *Catalog) CountryCount() int {
	return len(c.anchorList)
}

// FacilityCount 设施数量
func (c *Catalog) FacilityCount() int {
	return len(c.nodes) - len(c.anchorList)
}

// NearestFacilities 用空间索引查离给定坐标最近的 n 个设施
func (c *Catalog) NearestFacilities(lon, lat float64, n int) []*model.Node {
	if n <= 0 {
		return nil
	}
	results := c.index.NearestNeighbors(n, rtreego.Point{lat, lon})

	out := make([]*model.Node, 0, len(results))
	for _, r := range results {
		if item, ok := r.(*facilityItem); ok && item != nil {
			out = append(out, item.node)
		}
	}
	return out
}

// SearchNodes 按名称、ID 或别名模糊搜索节点 (大小写不敏感)
func (c *Catalog) SearchNodes(keyword string, limit int) []model.Node {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}

	var out []model.Node
	for i := range c.nodeList {
		n := &c.nodeList[i]
		if matchNode(n, kw) {
			out = append(out, *n)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// AdjacentCandidates 返回某节点在拓扑上直接相邻的全部节点 (不含权重)
// 等价于三种方式全部启用时图的邻接集合
func (c *Catalog) AdjacentCandidates(node *model.Node) []model.Node {
	g := NewGraph(c, model.UnitFactors())

	var out []model.Node
	g.ForNeighbors(node, func(to *model.Node, mode int, distKm float64) {
		out = append(out, *to)
	})
	return out
}

// NearestFacilityByDistance 线性扫描找离坐标最近的设施 (精确大圆距离)
// 空间索引按经纬度矩形近似，个别高纬度场景下需要这个精确版本兜底
func (c *Catalog) NearestFacilityByDistance(lon, lat float64) *model.Node {
	target := model.Point{Lon: lon, Lat: lat}

	var nearest *model.Node
	minDist := -1.0
	for _, list := range [][]*model.Node{c.seaports, c.airHubs} {
		for _, n := range list {
			d := utils.HaversineDistance(target, n.Location())
			if minDist < 0 || d < minDist {
				minDist = d
				nearest = n
			}
		}
	}
	for iso3 := range c.hubsByCountry {
		for _, n := range c.hubsByCountry[iso3] {
			d := utils.HaversineDistance(target, n.Location())
			if minDist < 0 || d < minDist {
				minDist = d
				nearest = n
			}
		}
	}
	return nearest
}

func matchNode(n *model.Node, kw string) bool {
	if strings.Contains(strings.ToLower(n.Name), kw) ||
		strings.Contains(strings.ToLower(n.ID), kw) {
		return true
	}
	for _, alias := range n.Aliases {
		if strings.Contains(strings.ToLower(alias), kw) {
			return true
		}
	}
	return false
}

func normalizeISO3(iso3 string) string {
	return strings.ToUpper(strings.TrimSpace(iso3))
}

func checkCoordinates(lon, lat float64) error {
	if lon < -180 || lon > 180 {
		return fmt.Errorf("经度 %v 超出 [-180, 180]", lon)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("纬度 %v 超出 [-90, 90]", lat)
	}
	return nil
}

func sortNodes(nodes []*model.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
