// Package donor holds the donor record model and the REST client for the
// fundraising backend's /api/v1/donors surface.
//
// Donor values are created by deserializing API responses and never mutated
// in place; edits produce a fresh value from the server. Every client
// operation is an independent pass-through call with no caching, retries,
// or ordering guarantees, and any non-success response surfaces as a single
// RequestError carrying the status text.
package donor
