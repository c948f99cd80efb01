package cleaning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailflow/internal/config"
	"retailflow/internal/table"
)

func storesTable(t *testing.T, n int, emptyCities int) *table.Table {
	t.Helper()
	tbl := table.New(ColStoreID, ColCity, ColLatitude, ColLongitude, ColAnnualRevenue)
	for i := 0; i < n; i++ {
		city := table.String("paris")
		if i < emptyCities {
			city = table.String("")
		}
		require.NoError(t, tbl.AppendRow(
			table.String(fmt.Sprintf("MAG_%03d", i+1)),
			city,
			table.Float(45+float64(i)*0.01),
			table.Float(2+float64(i)*0.01),
			table.Float(1_000_000+float64(i)*1000),
		))
	}
	return tbl
}

func TestCleanStoresEmptyCities(t *testing.T) {
	c := newTestCleaner()
	out, stats, err := c.CleanStores(context.Background(), storesTable(t, 50, 3))
	require.NoError(t, err)

	assert.Equal(t, 47, out.Len())
	assert.Equal(t, Stats{InitialCount: 50, FinalCount: 47, RemovedCount: 3, CleaningRate: 6.0}, stats)
	assert.Equal(t, stats, c.Stats()[config.DatasetStores])
	assert.Equal(t, "Paris", out.Cell(0, ColCity).Text())
}

func TestCleanStoresFullSequence(t *testing.T) {
	tbl := table.New(ColStoreID, ColCity, ColLatitude, ColLongitude, ColOpeningDate, ColAnnualRevenue, ColHeadcount)
	add := func(vals ...table.Value) { require.NoError(t, tbl.AppendRow(vals...)) }

	for i := 0; i < 10; i++ {
		add(table.String(fmt.Sprintf("MAG_%03d", i+1)), table.String(" lyon "),
			table.Float(45+float64(i)*0.1), table.String(fmt.Sprintf("4,%d", i+1)),
			table.String(fmt.Sprintf("%02d/03/2021", i+1)), table.Float(1_000_000+float64(i)*10_000), table.Int(10))
	}
	add(table.String("MAG_011"), table.String("NULL"), table.Float(46), table.Float(5), table.Null(), table.Float(1), table.Int(10))
	add(table.String("MAG_012"), table.String("Nice"), table.Float(70), table.Float(7), table.Null(), table.Float(1), table.Int(10))
	add(table.String("MAG_013"), table.String("Nice"), table.Float(43.7), table.Float(7.26), table.String("32/13/2023"), table.Float(1e12), table.Int(10))
	add(table.String("MAG_013_DUP"), table.String("Nice "), table.Float(43.8), table.Float(7.26), table.Null(), table.Float(1_050_000), table.Int(10))
	add(table.String("MAG_014"), table.String("Lyon"), table.Float(45), table.String("4,1"), table.Null(), table.String("N/A"), table.Int(10))

	out, stats, err := newTestCleaner().CleanStores(context.Background(), tbl)
	require.NoError(t, err)

	ids := make([]string, out.Len())
	for i := range ids {
		ids[i] = out.Cell(i, ColStoreID).Text()
		assert.False(t, strings.Contains(ids[i], DuplicateMarker))
		assert.Zero(t, out.NullCount(ColAnnualRevenue))
	}
	assert.NotContains(t, ids, "MAG_011", "NULL city is dropped")
	assert.NotContains(t, ids, "MAG_012", "out-of-box latitude is dropped")
	assert.NotContains(t, ids, "MAG_014", "same coordinates as MAG_001")
	assert.Contains(t, ids, "MAG_013")
	assert.Equal(t, 11, out.Len())
	assert.Equal(t, 15, stats.InitialCount)

	lon, ok := out.Cell(0, ColLongitude).Number()
	require.True(t, ok)
	assert.Equal(t, 4.1, lon)
	assert.Equal(t, "2021-03-01", out.Cell(0, ColOpeningDate).Text())

	var revenue13 float64
	for i := 0; i < out.Len(); i++ {
		if out.Cell(i, ColStoreID).Text() == "MAG_013" {
			revenue13, _ = out.Cell(i, ColAnnualRevenue).Number()
			assert.True(t, out.Cell(i, ColOpeningDate).IsNull())
		}
	}
	assert.Less(t, revenue13, 1e7, "outlier replaced by the median")
	assert.Equal(t, table.KindFloat, out.ColumnKind(ColAnnualRevenue))
}

func TestCleanStoresMissingColumn(t *testing.T) {
	tbl := table.New(ColCity, ColLatitude, ColLongitude)
	_, _, err := newTestCleaner().CleanStores(context.Background(), tbl)

	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, ColStoreID, mce.Column)
}

func TestCleanCompetitors(t *testing.T) {
	tbl := table.New("id_site", ColLatitude, ColLongitude, ColCompetitorType, ColCompetitorBrand, ColCatchmentKm, ColInvestment)
	add := func(vals ...table.Value) { require.NoError(t, tbl.AppendRow(vals...)) }

	add(table.String("SITE_001"), table.Float(48.1), table.Float(2.1), table.String("hypermarché"), table.String(" CARREFOUR"), table.Float(5000), table.Int(2_000_000))
	add(table.String("SITE_002"), table.String("48,2"), table.Float(2.2), table.String("Drive"), table.String("NULL"), table.Float(4.5), table.Null())
	add(table.String("SITE_003"), table.Float(48.1), table.Float(2.1), table.String("Drive"), table.String("Leclerc"), table.Float(3), table.Int(4_000_000))
	add(table.String("SITE_004"), table.Null(), table.Float(2.3), table.String("Drive"), table.String("Auchan"), table.Float(3), table.Int(6_000_000))
	add(table.String("SITE_005"), table.Float(47), table.Float(3), table.String("Discount"), table.String("Lidl"), table.String("N/A"), table.Int(8_000_000))

	c := newTestCleaner()
	out, stats, err := c.CleanCompetitors(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Len())
	assert.Equal(t, NewStats(5, 3), stats)

	zone, ok := out.Cell(0, ColCatchmentKm).Number()
	require.True(t, ok)
	assert.Equal(t, 5.0, zone)
	assert.Equal(t, "Hypermarché", out.Cell(0, ColCompetitorType).Text())
	assert.Equal(t, "Carrefour", out.Cell(0, ColCompetitorBrand).Text())
	assert.True(t, out.Cell(1, ColCompetitorBrand).IsNull())

	invest, ok := out.Cell(1, ColInvestment).Number()
	require.True(t, ok)
	assert.Equal(t, 4_000_000.0, invest)

	fill, ok := out.Cell(2, ColCatchmentKm).Number()
	require.True(t, ok)
	assert.Equal(t, 4.5, fill)
}

func transactionsTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New(ColTransactionID, ColDate, ColStoreRef, ColAmount, ColCategory)
	for i := 0; i < 20; i++ {
		cat := "alimentaire"
		if i%2 == 0 {
			cat = "TEXTILE "
		}
		require.NoError(t, tbl.AppendRow(
			table.String(fmt.Sprintf("TXN_%06d", i+1)),
			table.String(fmt.Sprintf("2024-01-%02d", i+1)),
			table.String("MAG_001"),
			table.Float(50+float64(i)),
			table.String(cat),
		))
	}
	return tbl
}

func TestCleanTransactions(t *testing.T) {
	tbl := transactionsTable(t)
	add := func(vals ...table.Value) { require.NoError(t, tbl.AppendRow(vals...)) }

	add(table.String("TXN_NEG"), table.String("2024-02-01"), table.String("MAG_001"), table.Float(-12.5), table.String("Maison"))
	add(table.String("TXN_BADDATE"), table.String("32/13/2023"), table.String("MAG_001"), table.Float(20), table.String("Maison"))
	add(table.String("TXN_REF"), table.String("2024-02-02"), table.String("MAG_INEXISTANT_003"), table.Float(20), table.String("Maison"))
	add(table.String("TXN_BIG"), table.String("2024-02-03"), table.String("MAG_002"), table.Float(100000), table.String("Maison"))
	add(table.String("TXN_NOCAT"), table.String("2024-02-04"), table.String("MAG_002"), table.Float(60), table.String("n/a"))
	add(table.String("TXN_000001"), table.String("2024-01-01"), table.String("MAG_001"), table.Float(50), table.String("TEXTILE "))

	out, stats, err := newTestCleaner().CleanTransactions(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 26, stats.InitialCount)
	assert.Equal(t, 22, out.Len())

	byID := map[string]int{}
	for i := 0; i < out.Len(); i++ {
		byID[out.Cell(i, ColTransactionID).Text()] = i
		amount, ok := out.Cell(i, ColAmount).Number()
		require.True(t, ok)
		assert.GreaterOrEqual(t, amount, 0.0)
		assert.Equal(t, table.KindDate, out.Cell(i, ColDate).Kind())
	}
	assert.NotContains(t, byID, "TXN_NEG")
	assert.NotContains(t, byID, "TXN_BADDATE")
	assert.NotContains(t, byID, "TXN_REF")

	big, _ := out.Cell(byID["TXN_BIG"], ColAmount).Number()
	assert.Less(t, big, 100000.0)
	assert.Greater(t, big, 69.0)

	assert.Equal(t, "Textile", out.Cell(byID["TXN_NOCAT"], ColCategory).Text())
	assert.Equal(t, "Alimentaire", out.Cell(byID["TXN_000002"], ColCategory).Text())
}

func TestCleanTransactionsNegativeSingleRow(t *testing.T) {
	tbl := table.New(ColTransactionID, ColDate, ColAmount)
	require.NoError(t, tbl.AppendRow(table.String("T1"), table.String("2024-01-01"), table.Float(-12.5)))
	require.NoError(t, tbl.AppendRow(table.String("T2"), table.String("2024-01-02"), table.Float(30)))

	out, _, err := newTestCleaner().CleanTransactions(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "T2", out.Cell(0, ColTransactionID).Text())
}

func TestCleanDispatch(t *testing.T) {
	c := newTestCleaner()
	_, _, err := c.Clean(context.Background(), "unknown", table.New("a"))
	assert.Error(t, err)

	_, _, err = c.Clean(context.Background(), config.DatasetStores, storesTable(t, 5, 0))
	require.NoError(t, err)
	assert.Contains(t, c.Stats(), config.DatasetStores)
}

func TestReport(t *testing.T) {
	stats := map[string]Stats{
		config.DatasetTransactions: NewStats(5010, 4600),
		config.DatasetStores:       NewStats(50, 47),
	}
	report := Report(stats, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(report, "DATA CLEANING REPORT\n"))
	assert.Contains(t, report, "Timestamp: 2024-05-01 10:30:00")
	assert.Contains(t, report, "  Initial records: 5,010")
	assert.Contains(t, report, "  Cleaning rate: 6.0%")
	assert.NotContains(t, report, "CONCURRENTS")
	assert.Less(t, strings.Index(report, "MAGASINS"), strings.Index(report, "TRANSACTIONS"))
}
