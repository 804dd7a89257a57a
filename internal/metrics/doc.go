// Package metrics keeps in-process request, store, and connection pool
// counters and renders them in the Prometheus text exposition format.
//
// A single Registry is created at start-up and passed by reference to the
// components that record into it. Recording uses only atomic operations;
// every label combination is allocated up front so the hot path never takes
// a lock or allocates. Counters reset when the process restarts.
package metrics
