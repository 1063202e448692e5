package jobs

import (
	"context"
	"fmt"
	"time"

	"psyjaciele/internal/domain/incidents"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/platform/metrics"
	"psyjaciele/internal/ports/auth"

	"github.com/robfig/cron/v3"
)

// systemPrincipal es la identidad con la que corre el snapshot: necesita
// ver todos los estados.
var systemPrincipal = auth.Principal{UserID: "system:stats", Username: "stats-job", Role: auth.RoleAdmin}

type statsSource interface {
	Stats(ctx context.Context, caller auth.Principal) (incidents.Stats, error)
}

// StatsJob publica periódicamente las métricas de incidentes como gauges.
type StatsJob struct {
	src     statsSource
	metrics *metrics.Metrics
	log     logger.Logger
	timeout time.Duration
}

func NewStatsJob(src statsSource, m *metrics.Metrics, log logger.Logger) *StatsJob {
	if log == nil {
		log = logger.Nop()
	}
	return &StatsJob{
		src:     src,
		metrics: m,
		log:     log.With(map[string]any{"component": "stats_job"}),
		timeout: 30 * time.Second,
	}
}

// RunOnce toma un snapshot y actualiza los gauges.
func (j *StatsJob) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	st, err := j.src.Stats(ctx, systemPrincipal)
	if err != nil {
		j.log.Warn("stats snapshot failed", map[string]any{"error": err})
		return err
	}

	byStatus := make(map[string]int, len(st.ByStatus))
	for s, n := range st.ByStatus {
		byStatus[string(s)] = n
	}
	if j.metrics != nil {
		j.metrics.SetSnapshot(metrics.Snapshot{
			Total:      st.Total,
			Last7Days:  st.Last7Days,
			Last30Days: st.Last30Days,
			ByStatus:   byStatus,
		})
	}

	j.log.Info("stats snapshot", map[string]any{
		"total":        st.Total,
		"last_7_days":  st.Last7Days,
		"last_30_days": st.Last30Days,
		"pending":      st.ByStatus[incidents.StatusPending],
	})
	return nil
}

// Start agenda RunOnce con la expresión cron (acepta "@every 5m").
// Corre un snapshot inmediato. Cancelar ctx detiene el scheduler.
func (j *StatsJob) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { _ = j.RunOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid stats cron %q: %w", spec, err)
	}

	_ = j.RunOnce(ctx)
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
