// Package domain defines the read model served by the API: decks, their
// ordered cards, listing filters, and the validation errors raised when a
// filter is out of bounds. The types carry no persistence or transport
// concerns.
package domain
