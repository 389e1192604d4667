// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the periodic background upkeep: the
// leaderboard cache refresh and, when an exporter is configured, the daily
// ledger snapshot. Engine operations themselves stay strictly
// request-driven; these jobs only touch derived data.
func StartMaintenanceScheduler(lb *LeaderboardService, exporter *SnapshotExporter) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := lb.Refresh(ctx); err != nil {
				log.Printf("[Scheduler] Leaderboard refresh failed: %v", err)
			}
		}),
	)

	if exporter != nil {
		_, _ = sched.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				url, err := exporter.Export(ctx)
				if err != nil {
					log.Printf("[Scheduler] Snapshot export failed: %v", err)
					return
				}
				log.Printf("✅ Ledger snapshot exported: %s", url)
			}),
		)
	}
}
