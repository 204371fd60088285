// Package vision calls an OpenAI-compatible vision model to read media
// titles off a shelf photograph.
//
// The model is instructed to answer with a strict JSON item list, but real
// responses drift: markdown fences, wrong-case enum values, an unsupported
// "book" kind, "author" instead of "creator", stringified years. Parsing
// tolerates those through a coercion pass and the whole call is retried
// once; a response that is still not schema-valid after two attempts fails
// the scan.
package vision
