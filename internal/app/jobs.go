package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 10m", func() {
		a.sweepStalePendingSessions()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.purgeOldFailedSessions()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// StartBackgroundJobs starts the cron runner.
func (a *Application) StartBackgroundJobs() {
	a.sched.Start()
}

// sweepStalePendingSessions fails sessions stuck in pending past their
// maximum age. The linked payments stay pending for manual reconciliation;
// this only keeps the session table from accumulating half-open checkouts.
func (a *Application) sweepStalePendingSessions() {
	maxAge := a.GetSettingsInt64Value("payment", "session_max_age_minutes")
	if maxAge <= 0 {
		maxAge = 60
	}
	cutoff := time.Now().Add(-time.Duration(maxAge) * time.Minute)

	res := a.gormDB.Model(&domain.PaymentSession{}).
		Where("status = ? AND created_at < ?", domain.SessionStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":        domain.SessionStatusFailed,
			"error_message": "session expired",
		})
	if res.Error != nil {
		zap.L().Error("stale session sweep failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("swept stale pending sessions", zap.Int64("count", res.RowsAffected))
	}
}

// purgeOldFailedSessions deletes failed sessions past the retention window.
func (a *Application) purgeOldFailedSessions() {
	retention := a.GetSettingsInt64Value("payment", "failed_session_retention_days")
	if retention <= 0 {
		retention = 90
	}
	cutoff := time.Now().Add(-time.Duration(retention) * 24 * time.Hour)

	res := a.gormDB.
		Where("status = ? AND created_at < ?", domain.SessionStatusFailed, cutoff).
		Delete(&domain.PaymentSession{})
	if res.Error != nil {
		zap.L().Error("failed session purge failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("purged old failed sessions", zap.Int64("count", res.RowsAffected))
	}
}
