// Package holiday scores trip dates by their proximity to holidays.
//
// A Calendar resolves dates to holiday labels; USCalendar provides the
// built-in United States federal set with New York observances. BuildIndex
// walks a date span once and records, for every day, its label and the
// nearest holiday on either side. The Estimator is then fitted against
// historical interest values (fares), producing a table of
// relative-importance scores normalized by the ordinary-day average, and
// transforms arbitrary dates into score and distance-to-holiday columns.
//
// Index and ScoreTable are built once and never mutated afterwards, so
// transforms may run concurrently against a shared instance.
package holiday
