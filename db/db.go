package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tariff-map-system/algo"
	"tariff-map-system/config"
	"tariff-map-system/model"
)

var DB *gorm.DB

// InitDB 连接 PostgreSQL 并准备好表结构
// Docker 里数据库可能比应用起得慢, 所以带重试; 表为空时自动从参考数据 JSON 导入
func InitDB(networkPath string) {
	host := config.GetEnv("DB_HOST", "localhost")
	port := config.GetEnv("DB_PORT", "5432")
	user := config.GetEnv("DB_USER", "tariffuser")
	password := config.GetEnv("DB_PASSWORD", "tariffpass")
	dbname := config.GetEnv("DB_NAME", "tariffmap")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		host, user, password, dbname, port,
	)

	var err error
	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Printf("等待数据库就绪... (%d/%d): %v", i+1, maxRetries, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("无法连接数据库: %v", err)
	}

	// 自动迁移模式 (自动创建表结构)
	if err := DB.AutoMigrate(&model.Country{}, &model.Node{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	var countryCount int64
	DB.Model(&model.Country{}).Count(&countryCount)
	if countryCount == 0 {
		log.Printf("检测到数据库为空，正在导入 %s ...", networkPath)
		if err := ImportNetworkData(networkPath); err != nil {
			log.Printf("警告: 导入物流网络数据失败: %v", err)
		} else {
			log.Println("物流网络数据导入成功!")
		}
	}

	log.Println("数据库连接并初始化成功！")
}

// ImportNetworkData 把参考数据 JSON 批量导入数据库
func ImportNetworkData(filepath string) error {
	data, err := algo.ReadNetworkData(filepath)
	if err != nil {
		return err
	}

	if len(data.Countries) > 0 {
		if err := DB.CreateInBatches(data.Countries, 100).Error; err != nil {
			return fmt.Errorf("插入国家失败: %w", err)
		}
		log.Printf("导入了 %d 个国家", len(data.Countries))
	}

	if len(data.Facilities) > 0 {
		if err := DB.CreateInBatches(data.Facilities, 100).Error; err != nil {
			return fmt.Errorf("插入设施失败: %w", err)
		}
		log.Printf("导入了 %d 个设施", len(data.Facilities))
	}

	return nil
}

// LoadNetworkData 从数据库读出全部国家和设施, 排序固定以保证目录构建可复现
func LoadNetworkData() ([]model.Country, []model.Node, error) {
	var countries []model.Country
	if err := DB.Order("iso3").Find(&countries).Error; err != nil {
		return nil, nil, fmt.Errorf("读取国家失败: %w", err)
	}

	var facilities []model.Node
	if err := DB.Order("id").Find(&facilities).Error; err != nil {
		return nil, nil, fmt.Errorf("读取设施失败: %w", err)
	}
	return countries, facilities, nil
}
