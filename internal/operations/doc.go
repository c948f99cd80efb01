// Package operations runs the retail data pipeline.
//
// A run moves through an explicit state machine:
//
//	start -> cleaning -> validating -> promoting -> done
//	                \______________/       \
//	                 (validation skipped)   failed (from any non-terminal state)
//
// Each state is driven by one or more stages executed in order by the
// Manager: the raw input check (with one-time regeneration), cleaning and
// staging, validation with the quality gate, atomic promotion with backups,
// and the run report.
//
// RunFullPipeline never returns an error. Failures are classified by
// ErrorType and reported in the Result:
//
//	res := manager.RunFullPipeline(ctx, operations.RunOptions{})
//	if !res.Success {
//		log.Printf("%s: %s", res.ErrorType, res.Error)
//	}
package operations
