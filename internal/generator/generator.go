package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"retailflow/internal/cleaning"
	"retailflow/internal/config"
	"retailflow/internal/exporter"
	"retailflow/internal/table"
)

// Sizes controls how many records each raw dataset gets before defects are injected
type Sizes struct {
	Stores       int
	Competitors  int
	Transactions int
}

// DefaultSizes keeps cleaned tables inside the row-count expectations
func DefaultSizes() Sizes {
	return Sizes{Stores: 50, Competitors: 30, Transactions: 5000}
}

// Generator writes the three raw CSV inputs with the defects the cleaners repair.
// The same seed always yields byte-identical files.
type Generator struct {
	logger *slog.Logger
	writer *exporter.CSVWriter
	seed   int64
	sizes  Sizes
	origin time.Time
}

// New creates a generator for seed
func New(logger *slog.Logger, seed int64, sizes Sizes) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "generator"))
	return &Generator{
		logger: logger,
		writer: exporter.NewCSVWriter(logger),
		seed:   seed,
		sizes:  sizes,
		origin: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate writes magasins_raw.csv, concurrents_raw.csv and transactions_raw.csv into rawDir
func (g *Generator) Generate(ctx context.Context, rawDir string) error {
	rng := rand.New(rand.NewPCG(uint64(g.seed), uint64(g.seed)^0x9e3779b97f4a7c15))

	stores := g.stores(rng)
	jobs := []struct {
		file    string
		headers []string
		records [][]string
	}{
		{config.RawStoresFile, storeHeaders, stores},
		{config.RawCompetitorsFile, competitorHeaders, g.competitors(rng)},
		{config.RawTransactionsFile, transactionHeaders, g.transactions(rng, len(stores))},
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(rawDir, job.file)
		if err := g.writer.WriteCSV(path, exporter.WriteOptions{
			Headers: job.headers,
			Records: job.records,
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", job.file, err)
		}
		g.logger.InfoContext(ctx, "raw_dataset_generated",
			slog.String("file", path),
			slog.Int("rows", len(job.records)))
	}
	return nil
}

type city struct {
	name     string
	lat, lon float64
}

var cities = []city{
	{"Paris", 48.8566, 2.3522},
	{"Lyon", 45.7640, 4.8357},
	{"Marseille", 43.2965, 5.3698},
	{"Toulouse", 43.6047, 1.4442},
	{"Nice", 43.7102, 7.2620},
	{"Nantes", 47.2184, -1.5536},
	{"Strasbourg", 48.5734, 7.7521},
	{"Montpellier", 43.6108, 3.8767},
	{"Bordeaux", 44.8378, -0.5792},
	{"Lille", 50.6292, 3.0573},
	{"Rennes", 48.1173, -1.6778},
	{"Reims", 49.2583, 4.0317},
}

var (
	storeHeaders = []string{
		cleaning.ColStoreID, "enseigne", "format", cleaning.ColCity,
		cleaning.ColLatitude, cleaning.ColLongitude, cleaning.ColOpeningDate,
		cleaning.ColAnnualRevenue, "nb_clients_mois", "panier_moyen",
		cleaning.ColSalesArea, cleaning.ColHeadcount, cleaning.ColPopulation1km,
	}
	competitorHeaders = []string{
		"id_site", cleaning.ColLatitude, cleaning.ColLongitude,
		cleaning.ColCompetitorType, cleaning.ColCompetitorBrand, cleaning.ColNearbyCity,
		cleaning.ColPlannedArea, "ouverture_prevue", cleaning.ColInvestment, cleaning.ColCatchmentKm,
	}
	transactionHeaders = []string{
		cleaning.ColTransactionID, cleaning.ColDate, cleaning.ColStoreRef,
		cleaning.ColAmount, cleaning.ColCategory,
	}

	brands          = []string{"Carrefour", "Leclerc", "Auchan", "Intermarché", "Lidl", "Casino"}
	formats         = []string{"Hyper", "Super", "Proxi"}
	competitorTypes = []string{"hypermarché", "supermarché", "discount", "proximité"}
	categories      = []string{"Alimentaire", "Boissons", "Hygiène", "Textile", "Électronique", "Maison"}
	nullVariants    = []string{"", "NULL", "N/A", "null", "#N/A", "None", "  "}
	invalidDates    = []string{"32/13/2023", "31/02/2022", "00/00/2021", "30/02/2023"}
)

func (g *Generator) stores(rng *rand.Rand) [][]string {
	n := g.sizes.Stores
	records := make([][]string, 0, n+2)
	for i := 0; i < n; i++ {
		c := cities[i%len(cities)]
		lat := c.lat + rng.NormFloat64()*0.05
		lon := c.lon + rng.NormFloat64()*0.05
		opened := g.origin.AddDate(-rng.IntN(20), -rng.IntN(12), -rng.IntN(28))
		revenue := 800_000 + rng.Float64()*4_000_000
		area := 400 + rng.IntN(4000)

		rec := []string{
			fmt.Sprintf("MAG%03d", i+1),
			brands[rng.IntN(len(brands))],
			formats[rng.IntN(len(formats))],
			noisyText(rng, c.name),
			formatCoord(lat),
			formatCoord(lon),
			formatDate(rng, opened),
			strconv.FormatFloat(math.Round(revenue*100)/100, 'f', 2, 64),
			strconv.Itoa(2000 + rng.IntN(30_000)),
			strconv.FormatFloat(math.Round((15+rng.Float64()*60)*100)/100, 'f', 2, 64),
			strconv.Itoa(area),
			strconv.Itoa(5 + area/60),
			strconv.Itoa(3000 + rng.IntN(40_000)),
		}
		records = append(records, rec)
	}

	// every 16th store loses its city, one store sits outside the region
	for i := 7; i < n; i += 16 {
		records[i][3] = nullVariants[rng.IntN(len(nullVariants))]
	}
	if n > 20 {
		records[20][4] = "61.5"
		records[11][4] = strings.Replace(records[11][4], ".", ",", 1)
		records[12][5] = strings.Replace(records[12][5], ".", ",", 1)
		records[5][7] = "95000000"
		records[9][7] = "N/A"
		records[14][6] = invalidDates[0]
	}

	// duplicate rows flagged upstream
	for _, src := range []int{1, 2} {
		if src < len(records) {
			dup := append([]string(nil), records[src]...)
			dup[0] += "_" + cleaning.DuplicateMarker
			records = append(records, dup)
		}
	}
	return records
}

func (g *Generator) competitors(rng *rand.Rand) [][]string {
	n := g.sizes.Competitors
	records := make([][]string, 0, n+1)
	for i := 0; i < n; i++ {
		c := cities[rng.IntN(len(cities))]
		zone := 2 + rng.Float64()*13
		zoneText := strconv.FormatFloat(math.Round(zone*10)/10, 'f', 1, 64)
		if i%9 == 4 {
			// reported in meters
			zoneText = strconv.Itoa(int(math.Round(zone * 1000)))
		}

		records = append(records, []string{
			fmt.Sprintf("SITE%03d", i+1),
			formatCoord(c.lat + rng.NormFloat64()*0.08),
			formatCoord(c.lon + rng.NormFloat64()*0.08),
			noisyText(rng, competitorTypes[rng.IntN(len(competitorTypes))]),
			noisyText(rng, brands[rng.IntN(len(brands))]),
			noisyText(rng, c.name),
			strconv.Itoa(500 + rng.IntN(5000)),
			formatDate(rng, g.origin.AddDate(0, 1+rng.IntN(24), rng.IntN(28))),
			strconv.Itoa(1_000_000 + rng.IntN(9_000_000)),
			zoneText,
		})
	}

	if n > 10 {
		records[3][8] = "NULL"
		records[6][9] = ""
		records[8][1] = ""
		dup := append([]string(nil), records[10]...)
		dup[0] = fmt.Sprintf("SITE%03d", n+1)
		records = append(records, dup)
	}
	return records
}

func (g *Generator) transactions(rng *rand.Rand, stores int) [][]string {
	n := g.sizes.Transactions
	records := make([][]string, 0, n+n/100)
	for i := 0; i < n; i++ {
		amount := math.Round(rng.ExpFloat64()*45*100)/100 + 1
		if rng.IntN(400) == 0 {
			amount = -amount
		}
		if rng.IntN(500) == 0 {
			amount = 2000 + rng.Float64()*8000
		}

		category := noisyText(rng, categories[rng.IntN(len(categories))])
		if rng.IntN(100) == 0 {
			category = nullVariants[rng.IntN(len(nullVariants))]
		}

		store := fmt.Sprintf("MAG%03d", 1+rng.IntN(max(stores-2, 1)))
		if rng.IntN(300) == 0 {
			store = "MAG999_" + cleaning.NonexistentMarker
		}

		day := g.origin.AddDate(0, 0, rng.IntN(365))
		date := formatDate(rng, day)
		if rng.IntN(250) == 0 {
			date = invalidDates[rng.IntN(len(invalidDates))]
		}

		records = append(records, []string{
			fmt.Sprintf("T%06d", i+1),
			date,
			store,
			strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64),
			category,
		})
	}

	// replayed exports
	for i := 0; i < n/100; i++ {
		src := records[rng.IntN(n)]
		records = append(records, append([]string(nil), src...))
	}
	return records
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', 6, 64)
}

// formatDate picks one of the layouts found in the raw exports
func formatDate(rng *rand.Rand, t time.Time) string {
	switch rng.IntN(4) {
	case 0:
		return t.Format("02/01/2006")
	case 1:
		return t.Format("2006/01/02")
	case 2:
		return t.Format("02-01-2006")
	default:
		return t.Format(table.DateLayout)
	}
}

// noisyText applies the casing and spacing noise seen in the raw exports
func noisyText(rng *rand.Rand, s string) string {
	switch rng.IntN(6) {
	case 0:
		return strings.ToUpper(s)
	case 1:
		return strings.ToLower(s)
	case 2:
		return "  " + s + " "
	default:
		return s
	}
}
