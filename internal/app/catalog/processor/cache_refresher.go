package processor

import (
	"context"

	"github.com/robfig/cron/v3"

	"kmarket/pkg/logger"
	"kmarket/pkg/metrics"
)

// MainRefresher пересобирает главную страницу и обновляет кеш
type MainRefresher interface {
	Refresh(ctx context.Context) error
}

// CacheRefresher прогревает кеш главной страницы по расписанию
// Кеш обновляется до истечения TTL, клиенты не ждут пересборки
type CacheRefresher struct {
	cron      *cron.Cron
	refresher MainRefresher
}

func NewCacheRefresher(refresher MainRefresher) *CacheRefresher {
	return &CacheRefresher{
		cron:      cron.New(),
		refresher: refresher,
	}
}

// Start регистрирует задачу и сразу выполняет первый прогрев
// Сбой первого прогрева не фатален: кеш заполнится при следующем запуске
func (r *CacheRefresher) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting main page cache refresher")

	_, err := r.cron.AddFunc(schedule, func() {
		r.refresh(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()

	r.refresh(ctx)

	return nil
}

func (r *CacheRefresher) refresh(ctx context.Context) {
	if err := r.refresher.Refresh(ctx); err != nil {
		metrics.RecordMainPageRefresh(false)
		logger.Error().Err(err).Msg("failed to refresh main page cache")
		return
	}
	metrics.RecordMainPageRefresh(true)
	logger.Info().Msg("main page cache refreshed")
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (r *CacheRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("main page cache refresher stopped")
}
