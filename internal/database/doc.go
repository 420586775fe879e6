// Package database provides SQLite-based storage for SightScan history.
//
// This package implements the HistoryDB, which stores every result record
// produced by a scan so that later runs can show how a site changed:
//   - Whether the widget was found, and where
//   - Load failures with their messages
//   - When each check happened
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
//
// The CSV output remains the primary result. The history database is an
// optional secondary sink enabled by configuration.
package database
