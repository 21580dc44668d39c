package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/school-auth/internal/pkg/log"
)

// SweepRevoked однократно очищает набор отозванных токенов
// от записей с истёкшим сроком и возвращает число удалённых.
// Граница сдвинута на Leeway: parseToken принимает токен до exp+Leeway,
// и до этого момента отозванный токен обязан оставаться в наборе.
func (s *Service) SweepRevoked(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.cfg.Leeway)

	removed, err := s.revoked.Sweep(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.metrics.Swept(removed)
	return removed, nil
}

// RunSweeper периодически вызывает SweepRevoked до отмены ctx.
// Ошибки очистки только логируются: это best-effort и не влияет на корректность.
func (s *Service) RunSweeper(ctx context.Context, period time.Duration) {
	if period <= 0 {
		return
	}

	lg := log.From(ctx)

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			removed, err := s.SweepRevoked(ctx)
			if err != nil {
				lg.Error("revocation_sweep_failed", slog.String("err", err.Error()))
				continue
			}

			lg.Debug("revocation_swept", slog.Int("removed", removed))
		}
	}
}
