// Package criteria defines the string-keyed criteria attached to blueprint
// components and connections, the reserved keys understood by the selection
// engine, and the tri-state outcome of evaluating a single criterion.
package criteria
