// Package pool provides a bounded, fair pool of reusable resources.
//
// It wraps github.com/jackc/puddle/v2, which queues waiting acquirers in
// arrival order, and adds what the serving layer needs on top: a warm-up
// that fails fast when no resource can be created, an acquire timeout that
// surfaces as ErrPoolExhausted, validation of resources on release so broken
// ones are destroyed instead of reused, scoped acquisition that releases on
// every exit path, and a background loop that keeps the pool at its minimum
// size.
package pool
