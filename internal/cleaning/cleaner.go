package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"retailflow/internal/config"
	"retailflow/internal/table"
)

// Column names of the three datasets
const (
	ColStoreID       = "id_magasin"
	ColCity          = "ville"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
	ColOpeningDate   = "date_ouverture"
	ColAnnualRevenue = "ca_annuel"
	ColPopulation1km = "population_zone_1km"
	ColSalesArea     = "surface_vente"
	ColHeadcount     = "effectif"

	ColCompetitorType  = "type_concurrent"
	ColCompetitorBrand = "enseigne_concurrent"
	ColNearbyCity      = "ville_proche"
	ColCatchmentKm     = "zone_chalandise_km"
	ColPlannedArea     = "surface_prevue"
	ColInvestment      = "investissement"

	ColTransactionID = "transaction_id"
	ColDate          = "date"
	ColAmount        = "montant"
	ColCategory      = "categorie"
	ColStoreRef      = "magasin_id"
)

// Row markers inserted upstream to flag rows that must not survive cleaning
const (
	DuplicateMarker   = "DUP"
	NonexistentMarker = "INEXISTANT"
)

// MetersThresholdKm is the catchment radius above which a value is read as meters
const MetersThresholdKm = 100.0

var (
	storeNumericColumns      = []string{ColAnnualRevenue, ColPopulation1km, ColSalesArea, ColHeadcount}
	competitorTextColumns    = []string{ColCompetitorType, ColCompetitorBrand, ColNearbyCity}
	competitorNumericColumns = []string{ColPlannedArea, ColInvestment, ColCatchmentKm}
)

// Options holds the numeric thresholds the primitives use
type Options struct {
	Bounds          config.BoundsBox
	IQRMultiplier   float64
	ZScoreThreshold float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Quality)
}

// OptionsFromConfig builds Options from the quality configuration
func OptionsFromConfig(q config.QualityConfig) Options {
	return Options{
		Bounds:          q.Bounds,
		IQRMultiplier:   q.IQRMultiplier,
		ZScoreThreshold: q.ZScoreThreshold,
	}
}

// MissingColumnError reports a dataset lacking a column its cleaner requires
type MissingColumnError struct {
	Dataset string
	Column  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset %s: required column %q not found", e.Dataset, e.Column)
}

// Cleaner applies the repair primitives and the per-dataset cleaning
// sequences. The stats map is scoped to the Cleaner's lifetime, one run.
type Cleaner struct {
	logger *slog.Logger
	opts   Options

	mu    sync.Mutex
	stats map[string]Stats
}

// NewCleaner creates a cleaner
func NewCleaner(logger *slog.Logger, opts Options) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		opts:   opts,
		stats:  make(map[string]Stats),
	}
}

// Stats returns a copy of the stats recorded so far, keyed by dataset
func (c *Cleaner) Stats() map[string]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.stats)
}

func (c *Cleaner) record(dataset string, s Stats) {
	c.mu.Lock()
	c.stats[dataset] = s
	c.mu.Unlock()
}

// Clean dispatches to the cleaner of dataset
func (c *Cleaner) Clean(ctx context.Context, dataset string, raw *table.Table) (*table.Table, Stats, error) {
	switch dataset {
	case config.DatasetStores:
		return c.CleanStores(ctx, raw)
	case config.DatasetCompetitors:
		return c.CleanCompetitors(ctx, raw)
	case config.DatasetTransactions:
		return c.CleanTransactions(ctx, raw)
	default:
		return nil, Stats{}, fmt.Errorf("unknown dataset %q", dataset)
	}
}

func requireColumns(dataset string, t *table.Table, columns ...string) error {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return &MissingColumnError{Dataset: dataset, Column: col}
		}
	}
	return nil
}

// CleanStores repairs the stores table
func (c *Cleaner) CleanStores(ctx context.Context, raw *table.Table) (*table.Table, Stats, error) {
	const dataset = config.DatasetStores
	if err := requireColumns(dataset, raw, ColStoreID, ColCity, ColLatitude, ColLongitude); err != nil {
		return nil, Stats{}, err
	}

	initial := raw.Len()
	c.logger.InfoContext(ctx, "dataset_cleaning_start",
		slog.String("dataset", dataset),
		slog.Int("rows", initial))

	t := c.NormalizeText(ctx, raw, ColCity)
	t = c.NormalizeNulls(ctx, t, ColCity, StrategyRemove)

	t = c.RepairCoordinates(ctx, t, ColLatitude, ColLongitude)
	t = c.NormalizeNulls(ctx, t, ColLatitude, StrategyRemove)
	t = c.NormalizeNulls(ctx, t, ColLongitude, StrategyRemove)

	if t.HasColumn(ColOpeningDate) {
		t = c.RepairDates(ctx, t, ColOpeningDate)
	}

	for _, col := range storeNumericColumns {
		if !t.HasColumn(col) {
			continue
		}
		mask := c.DetectOutliers(ctx, t, col, MethodIQR)
		for i, out := range mask {
			if out {
				t.SetCell(i, col, table.Null())
			}
		}
		t = c.NormalizeNulls(ctx, t, col, StrategyMedian)
	}

	t, _ = c.RemoveDuplicates(ctx, t, ColLatitude, ColLongitude)
	t = dropContaining(t, ColStoreID, DuplicateMarker)

	return c.finish(ctx, dataset, t, initial)
}

// CleanCompetitors repairs the competitor sites table
func (c *Cleaner) CleanCompetitors(ctx context.Context, raw *table.Table) (*table.Table, Stats, error) {
	const dataset = config.DatasetCompetitors
	if err := requireColumns(dataset, raw, ColLatitude, ColLongitude); err != nil {
		return nil, Stats{}, err
	}

	initial := raw.Len()
	c.logger.InfoContext(ctx, "dataset_cleaning_start",
		slog.String("dataset", dataset),
		slog.Int("rows", initial))

	t := c.RepairCoordinates(ctx, raw, ColLatitude, ColLongitude)
	t = c.NormalizeNulls(ctx, t, ColLatitude, StrategyRemove)
	t = c.NormalizeNulls(ctx, t, ColLongitude, StrategyRemove)

	for _, col := range competitorTextColumns {
		t = c.NormalizeText(ctx, t, col)
	}

	if t.HasColumn(ColCatchmentKm) {
		converted := 0
		for i := 0; i < t.Len(); i++ {
			if n, ok := t.Cell(i, ColCatchmentKm).Number(); ok && n > MetersThresholdKm {
				t.SetCell(i, ColCatchmentKm, table.Float(n/1000))
				converted++
			}
		}
		c.logger.InfoContext(ctx, "catchment_units_converted",
			slog.String("column", ColCatchmentKm),
			slog.Int("converted", converted))
	}

	for _, col := range competitorNumericColumns {
		if t.HasColumn(col) {
			t = c.NormalizeNulls(ctx, t, col, StrategyMedian)
		}
	}

	t, _ = c.RemoveDuplicates(ctx, t, ColLatitude, ColLongitude)

	return c.finish(ctx, dataset, t, initial)
}

// CleanTransactions repairs the transactions table
func (c *Cleaner) CleanTransactions(ctx context.Context, raw *table.Table) (*table.Table, Stats, error) {
	const dataset = config.DatasetTransactions
	if err := requireColumns(dataset, raw, ColDate); err != nil {
		return nil, Stats{}, err
	}

	initial := raw.Len()
	c.logger.InfoContext(ctx, "dataset_cleaning_start",
		slog.String("dataset", dataset),
		slog.Int("rows", initial))

	t := c.RepairDates(ctx, raw, ColDate)
	t = c.NormalizeNulls(ctx, t, ColDate, StrategyRemove)

	if t.HasColumn(ColAmount) {
		before := t.Len()
		t = t.Filter(func(i int) bool {
			n, ok := t.Cell(i, ColAmount).Number()
			return !ok || n >= 0
		})
		if removed := before - t.Len(); removed > 0 {
			c.logger.WarnContext(ctx, "negative_amounts_removed",
				slog.String("column", ColAmount),
				slog.Int("count", removed))
		}
		c.capOutliers(ctx, t, ColAmount, 99)
	}

	t = c.NormalizeText(ctx, t, ColCategory)
	if t.HasColumn(ColCategory) {
		t = c.NormalizeNulls(ctx, t, ColCategory, StrategyMode)
	}

	if t.HasColumn(ColStoreRef) {
		before := t.Len()
		t = dropContaining(t, ColStoreRef, NonexistentMarker)
		if removed := before - t.Len(); removed > 0 {
			c.logger.WarnContext(ctx, "invalid_store_references_removed",
				slog.String("column", ColStoreRef),
				slog.Int("count", removed))
		}
	}

	t, _ = c.RemoveDuplicates(ctx, t)

	return c.finish(ctx, dataset, t, initial)
}

// capOutliers clamps IQR outliers of column to its p-th percentile in place.
// Low outliers are already below the cap and stay as they are.
func (c *Cleaner) capOutliers(ctx context.Context, t *table.Table, column string, p float64) {
	mask := c.DetectOutliers(ctx, t, column, MethodIQR)

	values := make([]float64, 0, t.Len())
	for _, v := range t.Column(column) {
		if n, ok := v.Number(); ok {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return
	}
	limit := Percentile(values, p)

	capped := 0
	for i, out := range mask {
		if !out {
			continue
		}
		if n, ok := t.Cell(i, column).Number(); ok && n > limit {
			t.SetCell(i, column, table.Float(limit))
			capped++
		}
	}
	c.logger.InfoContext(ctx, "outliers_capped",
		slog.String("column", column),
		slog.Float64("limit", limit),
		slog.Int("capped", capped))
}

// dropContaining removes rows whose string cell in column contains marker
func dropContaining(t *table.Table, column, marker string) *table.Table {
	return t.Filter(func(i int) bool {
		s, ok := t.Cell(i, column).Str()
		return !ok || !strings.Contains(s, marker)
	})
}

func (c *Cleaner) finish(ctx context.Context, dataset string, t *table.Table, initial int) (*table.Table, Stats, error) {
	stats := NewStats(initial, t.Len())
	c.record(dataset, stats)
	c.logger.InfoContext(ctx, "dataset_cleaning_complete",
		slog.String("dataset", dataset),
		slog.Int("initial_count", stats.InitialCount),
		slog.Int("final_count", stats.FinalCount),
		slog.Float64("cleaning_rate", stats.CleaningRate))
	return t, stats, nil
}
