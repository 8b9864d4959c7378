package algo

import "errors"

// 路线规划的三类业务错误
// 调用方 (HTTP 层) 用 errors.Is 区分它们并翻译成对应的状态码，
// 算法内部只负责报出错误类别和上下文，不拼接面向用户的文案
var (
	// ErrCountryNotFound 国家代码在节点目录中没有对应的锚点
	ErrCountryNotFound = errors.New("country not found")

	// ErrInvalidFactor 成本系数非法 (负数、NaN 或 ±Inf)
	ErrInvalidFactor = errors.New("invalid transport factor")

	// ErrNoRoute 在本次请求启用的运输方式下两国之间不连通
	ErrNoRoute = errors.New("no route found")
)
