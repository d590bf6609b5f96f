package app

import (
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingsCacheTTL = 30 * time.Second

// SettingsManager reads runtime-tunable values from the sys_config table
// with a short read-through cache, so operators can change behavior without
// a restart.
type SettingsManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: map[string]string{}}
}

func (m *SettingsManager) load() map[string]string {
	m.mu.RLock()
	if time.Since(m.loadedAt) < settingsCacheTTL {
		cached := m.cache
		m.mu.RUnlock()
		return cached
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.L().Warn("settings load failed, serving stale cache", zap.Error(err))
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}

	fresh := make(map[string]string, len(rows))
	for _, row := range rows {
		fresh[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = fresh
	m.loadedAt = time.Now()
	m.mu.Unlock()
	return fresh
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.load()[category+"."+name]
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.load()[category+"."+name])
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.load()[category+"."+name])
}

// GetSection decodes every value of one category into a struct, matching
// field names case-insensitively.
func (m *SettingsManager) GetSection(category string, out interface{}) error {
	values := map[string]string{}
	prefix := category + "."
	for key, val := range m.load() {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			values[key[len(prefix):]] = val
		}
	}
	return mapstructure.WeakDecode(values, out)
}
