package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tariff-map-system/algo"
	"tariff-map-system/config"
	"tariff-map-system/db"
	"tariff-map-system/handler"
	"tariff-map-system/model"
	"tariff-map-system/tariff"
)

func main() {
	fmt.Println("=== 烟草关税地图 - 跨国物流路线与关税查询系统 ===")

	// 1. 读取配置 (.env 可选, 没有就用系统环境变量)
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件, 使用系统环境变量")
	}
	cfg := config.Load()

	if err := handler.ConfigureAuth(cfg.SecretKey, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("初始化管理员账号失败: %v", err)
	}

	// 2. 加载物流网络目录
	fmt.Println("正在构建物流网络目录...")
	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("加载物流网络失败: %v", err)
	}
	fmt.Printf("物流网络加载成功! 国家数: %d, 设施数: %d\n", cat.CountryCount(), cat.FacilityCount())
	handler.Catalog = cat

	// 3. 世界边界 GeoJSON (前端地图着色用, 缺失不影响启动)
	if body, err := os.ReadFile(cfg.CountriesGeoJSONPath); err == nil {
		handler.WorldGeoJSON = body
	} else {
		log.Printf("警告: 世界边界文件不可用: %v", err)
	}

	// 4. 离线关税索引
	idx, err := tariff.LoadIndex(cfg.TariffIndexPath)
	if err != nil {
		log.Printf("警告: 关税索引加载失败, 关税接口将无数据: %v", err)
		idx = tariff.Index{}
	} else {
		fmt.Printf("关税索引加载成功! 报告国数: %d\n", len(idx.Reporters(cfg.TobaccoProductCode)))
	}
	handler.TariffIndex = idx
	handler.Classification = cfg.TobaccoClassification
	handler.ProductCode = cfg.TobaccoProductCode
	handler.DefaultYear = cfg.DefaultYear

	// 5. 可选的 WTO 在线数据源
	if cfg.WTOAPIKey != "" {
		cli := tariff.NewClient(cfg.WTOAPIKey)
		cli.Language = cfg.WTOLanguage
		cli.Format = cfg.WTOFormat
		handler.WTOClient = cli
		fmt.Println("WTO Timeseries 在线数据源已启用")
	}

	// 6. 初始化 Gin 引擎并配置路由
	r := gin.Default()
	setupRoutes(r, cfg)

	// 7. 启动服务器 (WTO 接口慢, 写超时放宽到 90 秒)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	fmt.Println("\n服务器启动中...")
	fmt.Printf("访问地址: http://localhost:%s\n", cfg.Port)
	fmt.Printf("前端页面: http://localhost:%s/static/\n", cfg.Port)
	fmt.Println("API 文档:")
	fmt.Println("  - POST   /api/login              - 管理员登录")
	fmt.Println("  - POST   /api/route              - 跨国路线规划")
	fmt.Println("  - GET    /api/countries          - 国家列表")
	fmt.Println("  - GET    /api/nodes              - 节点列表")
	fmt.Println("  - GET    /api/nodes/:id          - 节点详情")
	fmt.Println("  - GET    /api/nodes/search       - 节点搜索")
	fmt.Println("  - GET    /api/nodes/nearest      - 最近设施")
	fmt.Println("  - GET    /api/tariffs            - 关税查询")
	fmt.Println("  - GET    /api/tariffs/reporters  - 有数据的报告国")
	fmt.Println("  - GET    /api/world-geojson      - 世界边界")
	fmt.Println("\n按 Ctrl+C 退出")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("服务器启动失败: %v", err)
	}
}

// loadCatalog 构建节点目录
// USE_DB=true 时国家和设施来自 PostgreSQL (首次启动自动导入), 否则直接读参考数据 JSON;
// 世界边界 GeoJSON 里有而参考数据里没有的国家, 用多边形质心补成锚点
func loadCatalog(cfg *config.Config) (*algo.Catalog, error) {
	var (
		countries  []model.Country
		facilities []model.Node
	)

	if cfg.UseDB {
		db.InitDB(cfg.NetworkDataPath)
		var err error
		countries, facilities, err = db.LoadNetworkData()
		if err != nil {
			return nil, err
		}
	} else {
		data, err := algo.ReadNetworkData(cfg.NetworkDataPath)
		if err != nil {
			return nil, err
		}
		countries, facilities = data.Countries, data.Facilities
	}

	if extra, err := algo.AnchorsFromGeoJSONFile(cfg.CountriesGeoJSONPath); err == nil {
		before := len(countries)
		countries = algo.MergeCountries(countries, extra)
		if added := len(countries) - before; added > 0 {
			log.Printf("从世界边界补充了 %d 个国家锚点", added)
		}
	} else {
		log.Printf("警告: 跳过世界边界锚点补充: %v", err)
	}

	return algo.BuildCatalog(countries, facilities)
}

// setupRoutes 配置路由
func setupRoutes(r *gin.Engine, cfg *config.Config) {
	// CORS 跨域中间件
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	// 静态文件服务 - 提供前端地图页面
	r.Static("/static", cfg.StaticDir)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})

	// 根路径重定向到前端页面
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/static/index.html")
	})

	// API 路由组
	api := r.Group("/api")
	{
		// 公开接口 (无需认证)
		api.POST("/login", handler.Login)

		// 登录后才能用的接口
		authorized := api.Group("")
		authorized.Use(handler.AuthMiddleware())
		{
			authorized.POST("/route", handler.FindRoute)
			authorized.GET("/countries", handler.GetCountries)
			authorized.GET("/nodes", handler.GetNodes)
			authorized.GET("/nodes/search", handler.SearchNodes)
			authorized.GET("/nodes/nearest", handler.NearestNodes)
			authorized.GET("/nodes/:id", handler.GetNodeByID)
			authorized.GET("/tariffs", handler.GetTariffs)
			authorized.GET("/tariffs/reporters", handler.GetTariffReporters)
			authorized.GET("/world-geojson", handler.GetWorldGeoJSON)
		}
	}
}
