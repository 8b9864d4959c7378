package model

import "github.com/lib/pq"

// Point 代表一个经纬度点 (WGS84, 经度在前)
type Point struct {
	Lon float64 `json:"lon"` // 经度, 范围 [-180, 180]
	Lat float64 `json:"lat"` // 纬度, 范围 [-90, 90]
}

// 节点种类
// 前三种是真实物流设施，country_anchor 是虚拟的国家锚点 (国家质心)，
// 作为路线的默认起点和终点
const (
	KindSeaport       = "seaport"        // 海港
	KindAirCargo      = "air_cargo"      // 航空货运枢纽
	KindHub           = "hub"            // 内陆综合枢纽 (铁路场站、公路口岸等)
	KindCountryAnchor = "country_anchor" // 国家锚点
)

// Node 对应物流网络中的一个节点
// 设施 ID 统一用 UN/LOCODE (如 DEHAM、DEFRA)，国家锚点的 ID 就是 ISO3 代码
// 不能用 IATA 三字码: FRA 既是法兰克福机场也是法国, HKG 既是机场也是香港
type Node struct {
	ID      string         `json:"id" gorm:"primaryKey"`
	Kind    string         `json:"kind" gorm:"index"`
	Name    string         `json:"name" gorm:"index"`
	Country string         `json:"country" gorm:"column:country_iso3;index"` // 所属国家 ISO3
	Lon     float64        `json:"lon"`
	Lat     float64        `json:"lat"`
	Aliases pq.StringArray `json:"aliases,omitempty" gorm:"type:text[]"` // 别名 (英文名、旧称等，供搜索)
}

// Location 返回节点坐标
func (n *Node) Location() Point {
	return Point{Lon: n.Lon, Lat: n.Lat}
}

// IsFacility 是否为真实物流设施 (而非虚拟锚点)
func (n *Node) IsFacility() bool {
	return n.Kind != KindCountryAnchor
}

// Country 参考数据中的国家条目，坐标即国家质心 (锚点位置)
type Country struct {
	ISO3 string  `json:"iso3" gorm:"primaryKey;column:iso3"`
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// NetworkData 用于解析整个物流网络参考数据 JSON 文件
type NetworkData struct {
	Meta       map[string]interface{} `json:"meta"` // 版本号、数据来源等元数据
	Countries  []Country              `json:"countries"`
	Facilities []Node                 `json:"facilities"`
}
