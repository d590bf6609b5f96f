package app

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"github.com/tamkeenorg/tamkeenpay/pkg/common"
	"go.uber.org/zap"
)

type defaultSetting struct {
	Key         string
	Default     string
	Description string
}

// defaultSettings are created when absent so a fresh database starts with a
// working configuration.
var defaultSettings = []defaultSetting{
	{"payment.session_max_age_minutes", "60", "Age after which a pending payment session is swept to failed"},
	{"payment.failed_session_retention_days", "90", "Failed sessions older than this are purged by the daily job"},
	{"mail.admin_email", "", "Recipient of admin order notifications; empty disables them"},
	{"mail.enabled", "true", "Master switch for outbound notification email"},
}

func (a *Application) checkSettings() {
	for sortid, setting := range defaultSettings {
		parts := splitKey(setting.Key)
		if parts == nil {
			continue
		}

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", parts[0], parts[1]).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   parts[0],
				Name:   parts[1],
				Value:  setting.Default,
				Remark: setting.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", setting.Key),
				zap.String("default", setting.Default))
		}
	}
}

func splitKey(key string) []string {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return []string{key[:i], key[i+1:]}
		}
	}
	return nil
}

// checkProducts initializes demo catalog rows on an empty database
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Title: "Sheep Contribution", Price: decimal.NewFromFloat(150.00), Category: domain.CategorySheep, Age: 2, HealthStatus: domain.HealthExcellent},
		{Title: "Cow Share", Price: decimal.NewFromFloat(320.00), Category: domain.CategoryCow, Age: 3, HealthStatus: domain.HealthGood},
		{Title: "Family Meal Package", Price: decimal.NewFromFloat(25.00), Category: domain.CategoryMeal, HealthStatus: domain.HealthExcellent},
		{Title: "Food Supplement Box", Price: decimal.NewFromFloat(40.00), Category: domain.CategoryFoodSupplements, HealthStatus: domain.HealthGood},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("title = ?", p.Title).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("title", p.Title), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("title", p.Title))
			}
		}
	}
}
