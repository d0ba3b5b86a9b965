package main

import (
	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "bikes", Name: "Велосипеды", Icon: "/uploads/icons/bike.svg", SortOrder: 1},
		{Slug: "scooters", Name: "Самокаты", Icon: "/uploads/icons/scooter.svg", SortOrder: 2},
		{Slug: "kids", Name: "Детский транспорт", Icon: "/uploads/icons/kids.svg", SortOrder: 3},
		{Slug: "accessories", Name: "Аксессуары", Icon: "/uploads/icons/accessories.svg", SortOrder: 4},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"bikes", "scooters", "kids", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Fatalf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	money := func(amount int64) models.Money {
		return models.NewMoneyFromInt(amount)
	}
	sale := func(amount int64) *models.Money {
		m := models.NewMoneyFromDecimal(decimal.NewFromInt(amount))
		return &m
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID:  categoryIDs["bikes"],
			Slug:        "stern-motion-29",
			Name:        "Горный велосипед Stern Motion 29\"",
			Description: "Хардтейл для кросс-кантри: алюминиевая рама, воздушная вилка, гидравлические тормоза.",
			Price:       money(56990),
			SalePrice:   sale(47990),
			Images:      models.StringArray{"/uploads/products/stern-motion-1.jpg", "/uploads/products/stern-motion-2.jpg"},
			InStock:     true,
			StockQty:    7,
			Season:      "summer",
			IsFeatured:  true,
			Specs: models.JSON(map[string]interface{}{
				"frame":       "alloy 6061",
				"wheels":      "29\"",
				"speeds":      20,
				"brakes":      "hydraulic disc",
				"weight_kg":   13.9,
				"rider_limit": 120,
			}),
			IsActive:  true,
			SortOrder: 1,
		},
		{
			CategoryID:  categoryIDs["bikes"],
			Slug:        "forward-city-28",
			Name:        "Городской велосипед Forward City 28\"",
			Description: "Комфортная посадка, багажник и крылья в комплекте, 7 передач.",
			Price:       money(32490),
			Images:      models.StringArray{"/uploads/products/forward-city-1.jpg"},
			InStock:     true,
			StockQty:    12,
			Season:      "all",
			IsNew:       true,
			Specs: models.JSON(map[string]interface{}{
				"frame":  "steel",
				"wheels": "28\"",
				"speeds": 7,
			}),
			IsActive:  true,
			SortOrder: 2,
		},
		{
			CategoryID:  categoryIDs["scooters"],
			Slug:        "kugoo-m5-pro",
			Name:        "Электросамокат Kugoo M5 Pro",
			Description: "Запас хода до 55 км, максимальная скорость 45 км/ч, амортизация обоих колёс.",
			Price:       money(64900),
			SalePrice:   sale(57900),
			Images:      models.StringArray{"/uploads/products/kugoo-m5-1.jpg"},
			InStock:     true,
			StockQty:    5,
			Season:      "summer",
			IsFeatured:  true,
			IsNew:       true,
			Specs: models.JSON(map[string]interface{}{
				"battery_ah":   18,
				"max_speed":    45,
				"range_km":     55,
				"wheel_inches": 10,
			}),
			IsActive:  true,
			SortOrder: 3,
		},
		{
			CategoryID:  categoryIDs["kids"],
			Slug:        "puky-lr-m",
			Name:        "Беговел Puky LR M",
			Description: "Лёгкий беговел для детей от 2 лет, регулируемое седло.",
			Price:       money(10990),
			Images:      models.StringArray{"/uploads/products/puky-lr-1.jpg"},
			InStock:     true,
			StockQty:    9,
			Season:      "all",
			Specs: models.JSON(map[string]interface{}{
				"age_from":  2,
				"weight_kg": 3.3,
			}),
			IsActive:  true,
			SortOrder: 4,
		},
		{
			CategoryID:  categoryIDs["accessories"],
			Slug:        "abus-helmet-urban",
			Name:        "Шлем Abus Urban-I 3.0",
			Description: "Городской шлем с габаритным фонарём и регулировкой размера.",
			Price:       money(7490),
			Images:      models.StringArray{"/uploads/products/abus-helmet-1.jpg"},
			InStock:     false,
			StockQty:    0,
			Season:      "all",
			Specs: models.JSON(map[string]interface{}{
				"sizes": []string{"M", "L"},
			}),
			IsActive:  true,
			SortOrder: 5,
		},
		{
			CategoryID:  categoryIDs["bikes"],
			Slug:        "stels-winter-fat",
			Name:        "Фэтбайк Stels Aggressor",
			Description: "Широкие покрышки для снега и песка, 24 передачи.",
			Price:       money(45990),
			Images:      models.StringArray{"/uploads/products/stels-fat-1.jpg"},
			InStock:     true,
			StockQty:    4,
			Season:      "winter",
			Specs: models.JSON(map[string]interface{}{
				"wheels": "26x4.0",
				"speeds": 24,
			}),
			IsActive:  true,
			SortOrder: 6,
		},
	}

	for _, product := range products {
		if product.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category missing", product.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 站点设置
	settings := []models.Setting{
		{Key: "shop_name", ValueJSON: models.JSON(map[string]interface{}{"value": "Velo Shop"})},
		{Key: "contact_phone", ValueJSON: models.JSON(map[string]interface{}{"value": "+7 (900) 000-00-00"})},
		{Key: "delivery_methods", ValueJSON: models.JSON(map[string]interface{}{
			"values": []string{"pickup", "courier"},
		})},
	}
	for _, setting := range settings {
		var existing models.Setting
		if err := models.DB.Where("key = ?", setting.Key).First(&existing).Error; err != nil {
			if err := models.DB.Create(&setting).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", setting.Key, err)
			} else {
				stdLog.Printf("Created setting: %s", setting.Key)
			}
		} else {
			stdLog.Printf("Setting already exists: %s", setting.Key)
		}
	}

	stdLog.Println("Seed finished")
}
