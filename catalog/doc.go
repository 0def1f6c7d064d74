// Package catalog loads the fixed assessment catalog.
//
// A catalog is read once at startup from a CSV file with at least the columns
// name, description, duration, test_type, remote_testing_support and url.
// Missing text cells become empty strings. Every duration must be a
// non-negative whole number of minutes; anything else fails the whole load
// with core.ErrCatalogLoad.
//
// The resulting Catalog is read-only. Its Texts slice is index-aligned with
// its assessments so both scorers can address records by position.
package catalog
