// Package retention provides retention policy enforcement for audit records.
//
// # Retention Policy
//
// The retention package automatically prunes old audit records:
//
//   - Configurable retention period (days)
//   - Configurable max record count
//   - Scheduled pruning (cron expression)
//
// # Basic Usage
//
//	pruner := retention.NewPruner(storage, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	})
//
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
// # Manual Pruning
//
// Pruning can also be triggered manually:
//
//	deleted, err := pruner.Prune(ctx)
//
// # Retention Period
//
// The retention period is specified in days:
//
//   - 0 days: Keep records forever (no age-based pruning)
//   - 90 days: Delete records older than 90 days (default)
//
// # Scheduling
//
// The pruner runs on a cron schedule:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "0 */6 * * *": Every 6 hours
//
// If no schedule is configured (empty PruneSchedule), the scheduler
// does nothing and Start() returns immediately without error.
package retention
