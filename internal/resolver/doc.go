// Package resolver turns one raw identified shelf item into an enriched
// catalog record.
//
// Per item it dispatches by kind (an ambiguous "disc" tries movies first,
// then TV), selects the best catalog candidate, assigns a confidence tier,
// resolves a supplemental-catalog id (direct cross-reference lookup
// preferred over title search), and optionally cross-references the
// personal library. Catalog failures degrade to "no data" — a dead catalog
// makes items unmatched, never a failed scan.
package resolver
