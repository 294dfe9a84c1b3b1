// Package trace records walk executions durably. A Recorder observes
// every dispatch step of a process; the Store persists finished runs
// and their steps in SQLite so walks can be inspected after the fact.
package trace
