// Package api implements the HTTP handlers of the deck API: parameter
// parsing and validation, mapping of service errors to status codes, and
// the JSON response shapes shared by the browser viewer and mobile client.
package api
