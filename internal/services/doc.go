// Package services defines the [Searcher] boundary to the search backend and implements it over HTTP and as an
// in-process simulation.
//
// # Searcher
//
// A search is one blocking call that may push [ProgressUpdate] values while it runs. Progress is sent without
// blocking; a slow or absent reader never stalls the search.
//
// # HTTP Implementation
//
// [HTTPSearcher] calls GET /search on a JSON backend. Responses map onto the shared sentinel errors:
//   - 400, 422: [shared.ErrQueryParse]
//   - 408, client deadline: [shared.ErrTimeout]
//   - 429: [shared.ErrRateLimited]
//   - 5xx, undecodable body: [shared.ErrServer]
//   - dial and transport failures: [shared.ErrConnection]
//   - an empty result list: [shared.ErrNoResults]
//
// # Simulated Implementation
//
// [SimulatedSearcher] sleeps for a configured latency, reports progress that never reaches 100, and can be told to
// fail with any error kind. A [rate.Limiter] quota produces rate limit failures.
package services
