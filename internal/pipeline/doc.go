// Package pipeline drives one shelf-photo scan from upload through vision
// identification, concurrent per-item enrichment, optional personal-library
// cross-reference, and persistence.
//
// Scans move pending -> analyzing -> enriching -> complete, or to the
// terminal error status from any state. Operations return a Task handle
// carrying a lifecycle event channel; the streaming transport is a pure
// consumer of that channel. Event delivery is best effort — a slow or
// absent listener never stalls the pipeline.
package pipeline
