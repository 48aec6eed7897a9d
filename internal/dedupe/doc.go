// Package dedupe scores duplicate-donor candidates against a reference
// record. Candidate discovery lives server-side; this package only explains
// candidates the backend already returned, as an additive heuristic over
// name, email, and phone.
package dedupe
