// Package registry holds the catalog of component variants a selection pass
// draws its candidates from.
//
// Modules register variants at startup through Module.Register. The catalog
// is an explicit value handed to the network builder; there is no global
// registry. Before use, ValidateRegistry performs a parity check between what
// each variant declares and what its instances actually report, catching
// mismatches before they surface as confusing selection failures.
package registry
