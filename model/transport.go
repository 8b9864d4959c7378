package model

import "math"

// 三种运输方式的名称，对外 JSON 中 legs[].transport 用的就是这些值
const (
	TransportRoad = "road" // 公路
	TransportSea  = "sea"  // 海运
	TransportAir  = "air"  // 空运
)

// 定义运输方式的二进制位 (Bitmask)
// 这样做的好处：算法里判断某种方式是否启用，不用对比字符串，只需要做一次位与运算 (&)
const (
	ModeNone = 0
	ModeRoad = 1 << 0 // 1 (二进制 001)
	ModeSea  = 1 << 1 // 2 (二进制 010)
	ModeAir  = 1 << 2 // 4 (二进制 100)
	ModeAll  = ModeRoad | ModeSea | ModeAir
)

// ModeName 将单个位掩码转换为方式名称
func ModeName(mode int) string {
	switch mode {
	case ModeRoad:
		return TransportRoad
	case ModeSea:
		return TransportSea
	case ModeAir:
		return TransportAir
	default:
		return ""
	}
}

// GetModeMask 获取单个运输方式的位掩码
func GetModeMask(mode string) int {
	switch mode {
	case TransportRoad:
		return ModeRoad
	case TransportSea:
		return ModeSea
	case TransportAir:
		return ModeAir
	default:
		return ModeNone
	}
}

// ParseModes 将字符串数组转换为位掩码
// 例如: ["road", "sea"] -> 1 | 2 = 3
func ParseModes(modes []string) int {
	mask := 0
	for _, m := range modes {
		mask |= GetModeMask(m)
	}
	return mask
}

// ModeFactors 单次请求的运输方式成本系数
// 每段的成本 = 距离(公里) × 对应方式的系数；系数只影响权重，不改变网络拓扑
// Mask 记录本次请求启用了哪些方式，请求里没给系数的方式视为不可用
type ModeFactors struct {
	Road float64
	Sea  float64
	Air  float64
	Mask int
}

// NewModeFactors 从请求参数构造系数集合，nil 表示该方式未提供 (禁用)
func NewModeFactors(road, sea, air *float64) ModeFactors {
	var f ModeFactors
	if road != nil {
		f.Road = *road
		f.Mask |= ModeRoad
	}
	if sea != nil {
		f.Sea = *sea
		f.Mask |= ModeSea
	}
	if air != nil {
		f.Air = *air
		f.Mask |= ModeAir
	}
	return f
}

// UnitFactors 三种方式全部启用、系数均为 1 的集合，此时权重就等于距离
func UnitFactors() ModeFactors {
	return ModeFactors{Road: 1, Sea: 1, Air: 1, Mask: ModeAll}
}

// Enabled 判断指定方式 (单个位掩码) 是否启用
func (f ModeFactors) Enabled(mode int) bool {
	return f.Mask&mode != 0
}

// Factor 返回指定方式 (单个位掩码) 的系数，未启用的方式返回 +Inf
func (f ModeFactors) Factor(mode int) float64 {
	if !f.Enabled(mode) {
		return math.Inf(1)
	}
	switch mode {
	case ModeRoad:
		return f.Road
	case ModeSea:
		return f.Sea
	case ModeAir:
		return f.Air
	default:
		return math.Inf(1)
	}
}

// Valid 检查所有已启用的系数是否为有限非负数
// 0 是合法值 (该方式免费)，负数、NaN、±Inf 都不合法
// 返回第一个非法方式的名称，全部合法时返回空串和 true
func (f ModeFactors) Valid() (string, bool) {
	check := func(mode int, v float64) bool {
		return !f.Enabled(mode) || (v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v))
	}
	if !check(ModeRoad, f.Road) {
		return TransportRoad, false
	}
	if !check(ModeSea, f.Sea) {
		return TransportSea, false
	}
	if !check(ModeAir, f.Air) {
		return TransportAir, false
	}
	return "", true
}
