// Package config loads blueprints from files.
//
// Each supported format is parsed into a format-agnostic Document listing
// component declarations, connection declarations and included files. The
// Loader then resolves includes and assembles every Document into a single
// blueprint.Blueprint. HCL files use `component "<name>" {}` and
// `connection "<out>" "<in>" {}` blocks; YAML and JSON files use the
// `Component`, `Connection` and `Include` lists.
package config
