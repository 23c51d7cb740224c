// Package blueprint models the user's declaration of a pipeline: named
// component slots with criteria, joined by directed connections that carry
// their own criteria.
//
// A Blueprint is an explicit directed graph. Names map to stable integer ids,
// every node keeps ordered adjacency lists in both directions, and connection
// criteria are stored per (upstream id, downstream id) pair, so there is at
// most one connection per ordered pair. Iteration follows insertion order.
package blueprint
