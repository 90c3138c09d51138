// Package server exposes the dashboard over HTTP: feed snapshots, summary
// statistics, public airdrop and insight listings, the login gate, the admin
// CRUD surface, and a websocket stream of live feed updates.
package server
