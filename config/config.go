package config

import (
	"os"
	"strconv"
)

// Config 全局配置, 进程启动时从环境变量读取一次
type Config struct {
	Port string

	// 管理员登录 (单管理员, 账号密码来自环境变量)
	SecretKey     string
	AdminUsername string
	AdminPassword string

	// WTO Timeseries API
	WTOAPIKey   string
	WTOLanguage int // 1 = 英语
	WTOFormat   string

	// 产品: 烟草 (HS 章节 24)
	TobaccoClassification string
	TobaccoProductCode    string
	DefaultYear           string // WTO 查询年份, "latest" 表示各伙伴国取最新一年

	// 数据文件
	NetworkDataPath      string
	CountriesGeoJSONPath string
	TariffIndexPath      string
	StaticDir            string

	// 为 true 时物流网络数据走 PostgreSQL, 否则直接读 JSON 文件
	UseDB bool
}

// Load 读取配置, 每一项都有能直接跑起来的默认值
func Load() *Config {
	return &Config{
		Port: GetEnv("PORT", "8080"),

		SecretKey:     GetEnv("SECRET_KEY", "dev-secret-key-change-me"),
		AdminUsername: GetEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: GetEnv("ADMIN_PASSWORD", "password123"),

		WTOAPIKey:   GetEnv("WTO_API_KEY", ""),
		WTOLanguage: GetEnvInt("WTO_DEFAULT_LANGUAGE", 1),
		WTOFormat:   GetEnv("WTO_DEFAULT_FORMAT", "json"),

		TobaccoClassification: GetEnv("TOBACCO_CLASSIFICATION", "HS"),
		TobaccoProductCode:    GetEnv("TOBACCO_PRODUCT_CODE", "24"),
		DefaultYear:           GetEnv("DEFAULT_YEAR", "latest"),

		NetworkDataPath:      GetEnv("NETWORK_DATA_PATH", "data/network_data.json"),
		CountriesGeoJSONPath: GetEnv("COUNTRIES_GEOJSON_PATH", "data/world_countries.geojson"),
		TariffIndexPath:      GetEnv("TARIFF_INDEX_PATH", "data/tariffs/tobacco_index.json"),
		StaticDir:            GetEnv("STATIC_DIR", "./static"),

		UseDB: GetEnv("USE_DB", "false") == "true",
	}
}

// GetEnv 读取环境变量, 没设置或为空时返回默认值
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt 读取整数环境变量, 解析失败时返回默认值
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
