package config

import "time"

// Application constants
const (
	AppName         = "Retail Flow"
	PipelineVersion = "1.0.0"

	// Quality gates, in percent
	DefaultGateThreshold   = 80.0
	DefaultStrictThreshold = 95.0

	// Outlier detection
	DefaultIQRMultiplier   = 1.5
	DefaultZScoreThreshold = 3.0

	// Operating region (metropolitan France)
	DefaultMinLatitude  = 41.0
	DefaultMaxLatitude  = 51.0
	DefaultMinLongitude = -5.0
	DefaultMaxLongitude = 10.0

	DefaultBackupRetention = 30 * 24 * time.Hour

	DefaultLogFileName = "pipeline.log"
	HistoryDBFileName  = "history.db"

	// Timestamp suffix used in backup and report file names
	TimestampLayout = "20060102_150405"
)

// Dataset identities
const (
	DatasetStores       = "magasins"
	DatasetCompetitors  = "concurrents"
	DatasetTransactions = "transactions"
)

// Datasets lists every dataset in processing order
var Datasets = []string{DatasetStores, DatasetCompetitors, DatasetTransactions}

// Raw input file names
const (
	RawStoresFile       = "magasins_raw.csv"
	RawCompetitorsFile  = "concurrents_raw.csv"
	RawTransactionsFile = "transactions_raw.csv"
)

// Staged file names
const (
	StagedStoresFile       = "magasins_staging.csv"
	StagedCompetitorsFile  = "concurrents_staging.csv"
	StagedTransactionsFile = "transactions_staging.csv"
)

// Processed file names, also used for the live copies
const (
	ProcessedStoresFile       = "magasins_performance.csv"
	ProcessedCompetitorsFile  = "sites_concurrents.csv"
	ProcessedTransactionsFile = "transactions.csv"
	MetadataFile              = "metadata.json"
)

// RawFiles maps dataset identity to its raw input file name
var RawFiles = map[string]string{
	DatasetStores:       RawStoresFile,
	DatasetCompetitors:  RawCompetitorsFile,
	DatasetTransactions: RawTransactionsFile,
}

// StagedFiles maps dataset identity to its staged file name
var StagedFiles = map[string]string{
	DatasetStores:       StagedStoresFile,
	DatasetCompetitors:  StagedCompetitorsFile,
	DatasetTransactions: StagedTransactionsFile,
}

// ProcessedFiles maps dataset identity to its processed file name
var ProcessedFiles = map[string]string{
	DatasetStores:       ProcessedStoresFile,
	DatasetCompetitors:  ProcessedCompetitorsFile,
	DatasetTransactions: ProcessedTransactionsFile,
}

// LiveDatasets are the processed tables copied to the live data directory
var LiveDatasets = []string{DatasetStores, DatasetCompetitors}
