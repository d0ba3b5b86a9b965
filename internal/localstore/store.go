// Package localstore 提供边缘节点的本地持久缓存：
// 商品/分类快照、离线同步队列与缓存元数据，全部落在独立的 SQLite 文件。
package localstore

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// CachedProduct 商品快照行，payload 为商品 JSON 序列化
type CachedProduct struct {
	ProductID uint   `gorm:"primarykey" json:"product_id"`
	Slug      string `gorm:"type:varchar(255);index" json:"slug"`
	Payload   string `gorm:"type:text" json:"payload"`
	CachedAt  int64  `gorm:"index" json:"cached_at"`
}

// CachedCategory 分类快照行
type CachedCategory struct {
	CategoryID uint   `gorm:"primarykey" json:"category_id"`
	Slug       string `gorm:"type:varchar(255);index" json:"slug"`
	Payload    string `gorm:"type:text" json:"payload"`
	CachedAt   int64  `gorm:"index" json:"cached_at"`
}

// SyncEntry 离线期间积压的待同步变更，按 ID 先进先出回放
type SyncEntry struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Type      string `gorm:"type:varchar(32);index" json:"type"`
	Action    string `gorm:"type:varchar(32)" json:"action"`
	Payload   string `gorm:"type:text" json:"payload"`
	Retries   int    `gorm:"default:0" json:"retries"`
	CreatedAt int64  `json:"created_at"`
}

// MetaEntry 缓存元数据（键值对，时间戳以 Unix 秒存储）
type MetaEntry struct {
	Key   string `gorm:"primarykey;type:varchar(128)" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// Store 边缘缓存存储
type Store struct {
	db         *gorm.DB
	staleAfter time.Duration
}

// Options 边缘缓存配置
type Options struct {
	DSN        string
	StaleAfter time.Duration
}

// Open 打开（或创建）边缘缓存库并迁移表结构
func Open(opts Options) (*Store, error) {
	dsn := opts.DSN
	if dsn == "" {
		dsn = "data/edge-cache.db"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&CachedProduct{}, &CachedCategory{}, &SyncEntry{}, &MetaEntry{}); err != nil {
		return nil, err
	}
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	return &Store{db: db, staleAfter: staleAfter}, nil
}

// CacheProducts 整表替换商品快照，并记录刷新时间
func (s *Store) CacheProducts(products []models.Product, now time.Time) error {
	rows := make([]CachedProduct, 0, len(products))
	for i := range products {
		payload, err := json.Marshal(&products[i])
		if err != nil {
			return err
		}
		rows = append(rows, CachedProduct{
			ProductID: products[i].ID,
			Slug:      products[i].Slug,
			Payload:   string(payload),
			CachedAt:  now.Unix(),
		})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CachedProduct{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return setMeta(tx, constants.MetaProductsCachedAt, strconv.FormatInt(now.Unix(), 10))
	})
}

// CacheCategories 整表替换分类快照，并记录刷新时间
func (s *Store) CacheCategories(categories []models.Category, now time.Time) error {
	rows := make([]CachedCategory, 0, len(categories))
	for i := range categories {
		payload, err := json.Marshal(&categories[i])
		if err != nil {
			return err
		}
		rows = append(rows, CachedCategory{
			CategoryID: categories[i].ID,
			Slug:       categories[i].Slug,
			Payload:    string(payload),
			CachedAt:   now.Unix(),
		})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CachedCategory{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return setMeta(tx, constants.MetaCategoriesCachedAt, strconv.FormatInt(now.Unix(), 10))
	})
}

// CachedProducts 读取全部商品快照
func (s *Store) CachedProducts() ([]models.Product, error) {
	var rows []CachedProduct
	if err := s.db.Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		var product models.Product
		if err := json.Unmarshal([]byte(row.Payload), &product); err != nil {
			// 单行损坏跳过，不影响其余快照
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// CachedProductBySlug 按 slug 读取单个商品快照
func (s *Store) CachedProductBySlug(slug string) (*models.Product, error) {
	var row CachedProduct
	if err := s.db.Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var product models.Product
	if err := json.Unmarshal([]byte(row.Payload), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CachedCategories 读取全部分类快照
func (s *Store) CachedCategories() ([]models.Category, error) {
	var rows []CachedCategory
	if err := s.db.Order("category_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		var category models.Category
		if err := json.Unmarshal([]byte(row.Payload), &category); err != nil {
			continue
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// IsStale 判断某类快照是否过期：从未刷新视为过期
func (s *Store) IsStale(metaKey string, now time.Time) (bool, error) {
	value, err := s.getMeta(metaKey)
	if err != nil {
		return true, err
	}
	if value == "" {
		return true, nil
	}
	cachedAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return true, nil
	}
	// 刷新时间按秒存储，恰好等于阈值时尚未过期
	return now.Sub(time.Unix(cachedAt, 0)) > s.staleAfter, nil
}

// CachedAt 读取某类快照的刷新时间，未刷新返回零值
func (s *Store) CachedAt(metaKey string) (time.Time, error) {
	value, err := s.getMeta(metaKey)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	cachedAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.Unix(cachedAt, 0), nil
}

// EnqueueSync 追加一条待同步变更
func (s *Store) EnqueueSync(entryType, action string, payload interface{}) (*SyncEntry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	entry := &SyncEntry{
		Type:      entryType,
		Action:    action,
		Payload:   string(body),
		CreatedAt: time.Now().Unix(),
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// PendingSync 按入队顺序返回待同步变更
func (s *Store) PendingSync(limit int) ([]SyncEntry, error) {
	var entries []SyncEntry
	query := s.db.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// PendingSyncCount 待同步变更数量
func (s *Store) PendingSyncCount() (int64, error) {
	var count int64
	err := s.db.Model(&SyncEntry{}).Count(&count).Error
	return count, err
}

// RemoveSync 移除已回放成功的变更
func (s *Store) RemoveSync(id uint) error {
	return s.db.Delete(&SyncEntry{}, id).Error
}

// IncrementSyncRetry 回放失败后累加重试计数，返回新的计数
func (s *Store) IncrementSyncRetry(id uint) (int, error) {
	if err := s.db.Model(&SyncEntry{}).Where("id = ?", id).
		UpdateColumn("retries", gorm.Expr("retries + 1")).Error; err != nil {
		return 0, err
	}
	var entry SyncEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return entry.Retries, nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) getMeta(key string) (string, error) {
	var entry MetaEntry
	if err := s.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return entry.Value, nil
}

func setMeta(tx *gorm.DB, key, value string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&MetaEntry{Key: key, Value: value}).Error
}
