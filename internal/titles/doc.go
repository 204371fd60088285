// Package titles provides the string normalization and similarity scoring
// primitives used to reconcile free-text media titles against catalog records.
//
// Vision-model titles are noisy: they carry leading articles, appended
// season/series decorations, and trailing year annotations that catalog
// names never have. The normalizers here are pure, deterministic, and
// idempotent so the same input always yields the same query form.
package titles
