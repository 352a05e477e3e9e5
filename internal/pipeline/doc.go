// Package pipeline assembles the full feature frame for a record batch:
// temporal calendar features, business-hour and cyclic encodings,
// great-circle and Manhattan-grid distances, and holiday proximity scores.
//
// Fit builds the immutable holiday structures once from training data;
// Transform then derives features for any batch. Rows are independent, so
// per-row work runs across a bounded worker group.
package pipeline
