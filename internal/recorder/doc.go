// Package recorder archives trade ticks to PostgreSQL.
//
// The recorder subscribes to feed updates, batches new ticks, and inserts
// them append-only. Windows overlap between updates, so each token's highest
// archived aggregate ID is tracked to skip already-seen ticks, with
// ON CONFLICT DO NOTHING as the backstop across restarts.
package recorder
