package service

import (
	"encoding/json"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置（合并默认值）
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, value)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetPricingSettings 加载平台定价配置，缺失时返回全关闭的默认配置
func (s *SettingService) GetPricingSettings() (*PricingSettings, error) {
	settings := &PricingSettings{}
	if s == nil {
		return settings, nil
	}

	value, err := s.GetByKey(constants.SettingKeyPricingConfig)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return settings, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, ErrSettingsInvalid
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, ErrSettingsInvalid
	}
	return settings, nil
}
