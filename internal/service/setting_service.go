package service

import (
	"strings"

	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// SettingService 站点设置服务
type SettingService struct {
	settingRepo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// 公开可读的设置键白名单，店面接口只暴露这些键
var publicSettingKeys = map[string]bool{
	"shop_info":       true,
	"contact":         true,
	"delivery":        true,
	"social_links":    true,
	"homepage_banner": true,
}

// Get 读取单个设置
func (s *SettingService) Get(key string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrSettingNotFound
	}
	setting, err := s.settingRepo.Get(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrSettingNotFound
	}
	return setting, nil
}

// PublicSettings 店面可见的设置集合
func (s *SettingService) PublicSettings() (map[string]models.JSON, error) {
	settings, err := s.settingRepo.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.JSON)
	for _, setting := range settings {
		if publicSettingKeys[setting.Key] {
			out[setting.Key] = setting.ValueJSON
		}
	}
	return out, nil
}

// List 全部设置（管理端）
func (s *SettingService) List() ([]models.Setting, error) {
	return s.settingRepo.List()
}

// Upsert 写入设置
func (s *SettingService) Upsert(key string, value models.JSON) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrSettingNotFound
	}
	setting := &models.Setting{Key: key, ValueJSON: value}
	if err := s.settingRepo.Upsert(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// Delete 删除设置
func (s *SettingService) Delete(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrSettingNotFound
	}
	return s.settingRepo.Delete(key)
}
