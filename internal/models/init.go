package models

import (
	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/logger"
)

// InitDefaultSettings 初始化默认平台设置
func InitDefaultSettings() error {
	var count int64
	DB.Model(&Setting{}).Where("key = ?", constants.SettingKeyPricingConfig).Count(&count)
	if count > 0 {
		return nil
	}

	setting := Setting{
		Key: constants.SettingKeyPricingConfig,
		ValueJSON: JSON{
			"is_discount_rates":     false,
			"discount_rates":        map[string]interface{}{},
			"is_credits_rates":      false,
			"credits_rates":         []interface{}{},
			"is_free_tickets_rates": false,
			"free_tickets_rates":    []interface{}{},
		},
	}
	if err := DB.Create(&setting).Error; err != nil {
		return err
	}

	logger.Warnw("default_pricing_settings_created", "key", constants.SettingKeyPricingConfig)
	return nil
}
