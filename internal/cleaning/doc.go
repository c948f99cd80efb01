// Package cleaning repairs the raw retail tables.
//
// The column repair primitives (NormalizeNulls, NormalizeText,
// RepairCoordinates, RepairDates, RemoveDuplicates, DetectOutliers) each take
// a table and return a new one, logging how many cells they changed. Malformed
// cells are never an error; they degrade to missing and are resolved by null
// normalization.
//
// CleanStores, CleanCompetitors and CleanTransactions apply a fixed sequence
// of primitives tailored to each dataset and record a Stats entry under the
// dataset name. A Cleaner is meant to live for one pipeline run.
package cleaning
