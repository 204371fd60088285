// Package plex wraps the personal media-library server API.
//
// The client lists movie/show libraries and their items with embedded
// external cross-reference ids. Items carry their ids in one of two
// encodings depending on the server's metadata agent generation: a
// structured list of scheme-prefixed identifiers, or a single legacy guid
// string with the scheme embedded in the agent name. Both are parsed.
package plex
