// Package admin manages the editable dashboard records: airdrop listings,
// polled token definitions, and alpha insights. The backend API owns the
// records; this package keeps a local working copy, applies edits through the
// API, and resynchronizes from the backend when a mutation fails.
package admin
