// Command podqueue manages a persisted podcast episode queue.
//
// Queue commands (list, add, remove, move, check, repair) open the SQLite
// store directly; every reorder goes through the queue orderer so positions
// stay 0..k-1 no matter how many podqueue processes run at once. `serve`
// exposes the same operations over HTTP together with a change stream and
// Prometheus metrics.
package main
