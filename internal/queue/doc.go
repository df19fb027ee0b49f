// Package queue persists podcast episodes in SQLite and maintains the
// listening queue built on top of them.
//
// The Store manages database connections, schema initialization, and the
// small record layer (subscriptions and episodes) the rest of the system
// reads through. Episodes carry an optional queue position; the Orderer is
// the only writer of that column and keeps the positioned episodes numbered
// 0..k-1 with no gaps or duplicates.
//
// Every Orderer mutation runs as one immediate SQLite transaction guarded by
// an in-process mutex and, when configured, a cross-process lock file. A
// failed call rolls back entirely, so readers never see a partially shifted
// queue. Successful mutations are reported to a Notifier (see Broadcaster)
// and an Observer (see the metrics package).
//
// The database is treated as owned by this package. Schema changes bump the
// version in schema.go; users clear the database to adopt the new schema.
package queue
