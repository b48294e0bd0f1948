// Package history persists a record of every clipfetch download in SQLite.
//
// The store lives at <state_dir>/history.db, runs in WAL mode with a busy
// timeout, and retries SQLITE_BUSY with exponential backoff so concurrent CLI
// invocations can append safely. The schema is embedded and version-checked on
// open; a mismatch asks the user to clear the database rather than migrating.
package history
