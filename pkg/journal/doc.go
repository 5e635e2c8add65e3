// Package journal records the outcome of prune runs.
//
// Every run gets one row: which job ran, against which source, how many
// entries were kept and dropped, and the names that were dropped. The
// history answers "when did this snapshot disappear from the keep set" long
// after the downstream deletion has happened.
//
// Two stores are provided. SQLiteStore persists to a single database file
// and works with either the pure Go modernc.org/sqlite driver ("sqlite",
// the default) or the cgo github.com/mattn/go-sqlite3 driver ("sqlite3").
// MemoryStore keeps runs in process and is meant for tests and one-shot
// invocations.
package journal
