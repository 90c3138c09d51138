// Package feed implements the per-token trade feed poller.
//
// Each poller:
//   - Waits out a stagger delay before its first fetch so columns sharing a
//     rate-limited upstream do not fire simultaneously
//   - Keeps at most one request in flight, cancelling any predecessor
//   - Merges snapshots into a bounded rolling window keyed by a
//     high-water aggregate trade ID
//   - Retries failures on an exponential backoff schedule, capped at 15s
//   - Treats cancellation of a superseded request as a silent no-op
package feed
