// Package tmdb wraps the primary movie/TV metadata catalog API.
//
// The client exposes ranked title search for movies and TV, detail fetches
// that append credits/external ids, a find-by-external-id lookup, and a
// process-wide lazily-populated genre cache. Transport failures surface as
// errors; the resolver treats them as "no data" so one catalog outage never
// fails a scan.
package tmdb
