package model

// User 管理员账户 (用于登录认证)
// 账号信息来自环境变量，启动时散列密码后常驻内存，不落数据库
type User struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt 哈希，永不出现在响应里
}
