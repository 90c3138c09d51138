// Package api provides HTTP clients for the two external surfaces the
// dashboard depends on:
//
//   - Trade feed endpoints: one absolute URL per token returning
//     {"data": [TradeTick...]}. Fetched with no caching and no client-side
//     retry; the feed poller owns the retry schedule.
//   - Admin REST backend: airdrops, token configs and alpha insights under a
//     single base path. Reads are retried with jittered exponential backoff;
//     mutations are issued exactly once.
package api
