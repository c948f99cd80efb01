// Package validation evaluates declarative expectations against cleaned tables.
//
// An Expectation is one of a closed set of assertions (row count range,
// column presence, uniqueness, completeness, value range, inferred type).
// Evaluate never fails: errors and panics raised while checking become a
// failed Result carrying the message.
//
// Suites group expectations per dataset. A Validator evaluates them in order
// and aggregates a Summary whose overall success rate drives the promotion gate:
//
//	v := validation.NewValidator(logger, validation.DefaultSuites(cfg.Quality.Bounds)...)
//	res := v.Validate(ctx, tables)
//	if !res.Summary.PassesGate(cfg.EffectiveGateThreshold()) {
//		// abort before promotion
//	}
//
// FileValidator checks raw inputs and output directories before a run starts.
package validation
