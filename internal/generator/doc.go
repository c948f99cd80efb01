// Package generator produces seeded synthetic raw inputs for the pipeline.
//
// The files carry the defects found in real exports (null variants, casing
// and spacing noise, comma decimals, coordinates outside the region, mixed
// and impossible dates, flagged duplicates, outliers, catchment radii in
// meters, negative amounts, unknown store references, replayed rows) so the
// cleaners have something to repair.
package generator
