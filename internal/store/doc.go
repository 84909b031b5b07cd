// Package store provides the SQLite-backed gradebook.
//
// A run is one execution of a suite. Each graded test case becomes a result
// row under its run, keyed by a content-addressed ID derived from the run ID,
// test name and outcome.
//
// # Ordering
//
//   - Runs carry seq, a logical clock assigned on insert. Listings order by
//     seq, never by started_at, so clock skew cannot reorder history.
//   - Results order by position (the case's index in the suite), then id.
//
// # Encoding
//
// Result messages are stored as canonical JSON arrays so identical outcomes
// produce byte-identical rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s on lock contention
//   - foreign_keys=ON: results must reference an existing run
//   - Single writer connection
package store
