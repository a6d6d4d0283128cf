// Package fixture populates item stores from static fixture files.
//
// Fixtures are read once, up front; lookups afterwards go to the in-memory
// store only. The format is chosen by file extension:
//   - .yaml, .yml: YAML document
//   - .json: JSON document
//   - .cue: CUE document, evaluated then exported
//   - .db, .sqlite, .sqlite3: SQLite database with a records table
//
// The text formats share one document shape:
//
//	records:
//	  u1:
//	    name: Ann
//	  u2:
//	    name: Bea
//
// Each record must be an object. Numbers must be integers.
//
// # SQLite Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - schema version tracked in PRAGMA user_version
package fixture
