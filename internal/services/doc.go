// Package services defines the shared error taxonomy for external service
// adapters and pipeline stages.
//
// Adapters fail soft for transport problems (callers see empty results) but
// wrap hard failures with one of the sentinel markers here so the pipeline
// can decide whether an error dooms the scan or only degrades one item.
package services
