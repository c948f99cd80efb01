package operations

import (
	"time"
)

// Metadata is written as metadata.json next to the processed tables
type Metadata struct {
	PipelineRunTime time.Time         `json:"pipeline_run_time"`
	DataFreshness   time.Time         `json:"data_freshness"`
	PipelineVersion string            `json:"pipeline_version"`
	RunID           string            `json:"run_id"`
	ProcessingStats Stats             `json:"processing_stats"`
	Checksums       map[string]string `json:"checksums"`
}

// newMetadata describes run as it will look once outputs are promoted
func newMetadata(run *Run, version string, now time.Time, checksums map[string]string, outputs []string) Metadata {
	stats := run.stats()
	stats.FilesCreated = outputs
	stats.ExecutionTimeSeconds = run.Elapsed(now).Seconds()
	return Metadata{
		PipelineRunTime: run.StartTime,
		DataFreshness:   now,
		PipelineVersion: version,
		RunID:           run.ID,
		ProcessingStats: stats,
		Checksums:       checksums,
	}
}
