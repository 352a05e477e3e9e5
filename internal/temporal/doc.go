// Package temporal derives calendar features from trip timestamps.
//
// The Deriver decomposes timezone-aware instants into calendar fields and
// normalized progress ratios (fraction of the day, week, month, or year
// elapsed). Requesting a progress ratio implicitly computes its raw
// prerequisites; only the requested columns are projected, in caller order.
//
// Cyclic maps periodic features like hour-of-day onto the unit circle so a
// regression model never sees the midnight wraparound as a large jump.
// BusinessFlags emits night-hour and peak-hour indicators.
package temporal
