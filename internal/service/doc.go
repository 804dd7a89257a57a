// Package service contains the application use cases that sit between the
// HTTP layer and the deck store.
//
// Services validate requests against domain rules, delegate to the store
// interfaces defined in internal/store, translate store errors into
// service-level errors, and report the latency and outcome of every store
// operation to the metrics registry. They never depend on a concrete store
// implementation.
package service
