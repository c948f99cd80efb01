package validation

import (
	"retailflow/internal/cleaning"
	"retailflow/internal/config"
	"retailflow/internal/table"
)

// Suite is a named, ordered list of expectations bound to one dataset
type Suite struct {
	Name         string
	Dataset      string
	Expectations []Expectation
}

// StoresSuite checks the cleaned store table
func StoresSuite(b config.BoundsBox) Suite {
	return Suite{
		Name:    "magasins_suite",
		Dataset: config.DatasetStores,
		Expectations: []Expectation{
			RowCountBetween{Min: 40, Max: 60},
			ColumnExists{Target: cleaning.ColStoreID},
			ColumnUnique{Target: cleaning.ColStoreID},
			ColumnNotNull{Target: cleaning.ColCity},
			ColumnValuesBetween{Target: cleaning.ColLatitude, Min: b.MinLat, Max: b.MaxLat},
			ColumnValuesBetween{Target: cleaning.ColLongitude, Min: b.MinLon, Max: b.MaxLon},
			ColumnOfType{Target: cleaning.ColAnnualRevenue, Kind: table.KindFloat},
			ColumnValuesBetween{Target: cleaning.ColAnnualRevenue, Min: 100_000, Max: 10_000_000},
		},
	}
}

// CompetitorsSuite checks the cleaned competitor sites table
func CompetitorsSuite(b config.BoundsBox) Suite {
	return Suite{
		Name:    "concurrents_suite",
		Dataset: config.DatasetCompetitors,
		Expectations: []Expectation{
			ColumnNotNull{Target: cleaning.ColLatitude},
			ColumnNotNull{Target: cleaning.ColLongitude},
			ColumnValuesBetween{Target: cleaning.ColLatitude, Min: b.MinLat, Max: b.MaxLat},
			ColumnValuesBetween{Target: cleaning.ColLongitude, Min: b.MinLon, Max: b.MaxLon},
			ColumnValuesBetween{Target: cleaning.ColCatchmentKm, Min: 0, Max: 100},
			ColumnOfType{Target: cleaning.ColCatchmentKm, Kind: table.KindFloat},
		},
	}
}

// TransactionsSuite checks the cleaned transactions table
func TransactionsSuite() Suite {
	return Suite{
		Name:    "transactions_suite",
		Dataset: config.DatasetTransactions,
		Expectations: []Expectation{
			RowCountBetween{Min: 4000, Max: 6000},
			ColumnUnique{Target: cleaning.ColTransactionID},
			ColumnNotNull{Target: cleaning.ColDate},
			ColumnValuesBetween{Target: cleaning.ColAmount, Min: 0, Max: 1000},
			ColumnNotNull{Target: cleaning.ColStoreRef},
			ColumnNotNull{Target: cleaning.ColCategory},
		},
	}
}

// DefaultSuites returns the three suites in evaluation order
func DefaultSuites(b config.BoundsBox) []Suite {
	return []Suite{StoresSuite(b), CompetitorsSuite(b), TransactionsSuite()}
}
