// Package irrigation is the irrigation decision engine.
//
// It has three independent, side-effect free parts:
//
//   - Aggregate reduces timed rain samples to a near-term total and a chart series.
//   - Classifier turns free-text advisory answers into a ternary Decision.
//   - Estimator computes per-area and total water volumes from crop reference
//     data, soil moisture, forecast rain and farm area.
//
// Nothing in this package performs I/O, blocks or keeps mutable state; the
// planner package sequences it with the external forecast and advisory sources.
//
// Numeric inputs are not range checked here. Soil moisture above 100 yields a
// negative soil factor and negative volumes; callers validate domain ranges.
package irrigation
