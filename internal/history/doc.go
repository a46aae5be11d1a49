// Package history records finished and in-flight encode jobs in a SQLite
// database under the log directory.
//
// Every batch invocation gets a run ID and every output a job row, so
// "spool history" can answer what was encoded, with which settings, and how
// long it took. The store also repairs state on startup: jobs left in the
// running state by a killed process are flipped to interrupted.
package history
