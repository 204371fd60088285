// Package tvdb wraps the supplemental TV-focused metadata catalog API.
//
// The catalog uses a login handshake: a static API key is exchanged for a
// bearer token valid for roughly a month. The client caches the token and
// refreshes it a few days before expiry; concurrent refreshes may race, the
// overwrite is idempotent. Search results carry their numeric id under one
// of three differently-shaped fields, so extraction tries them in a fixed
// priority order.
package tvdb
