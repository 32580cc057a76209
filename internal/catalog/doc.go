// Package catalog persists application records and their conversion state in
// the applications.json document served by the website.
//
// The Catalog is loaded fully into memory at the start of a run, mutated as
// conversions progress, and written back atomically at the end. A flock-based
// lock next to the file enforces the single-writer assumption; concurrent
// runs are not supported. The Reconciler merges freshly discovered records
// into the loaded catalog, deciding whether existing conversion state can be
// reused or must be reset.
//
// Treat this package as the single source of truth for record semantics: new
// statuses or package formats are added here first.
package catalog
