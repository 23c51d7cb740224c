// Package network turns a blueprint into a running pipeline.
//
// A Builder resolves every blueprint component to exactly one registered
// variant by constraint propagation: node criteria first, then connection
// criteria, then a handshake loop that repeatedly narrows the neighbours of
// already-unique components until nothing changes. Once all components are
// unique the builder binds their interfaces and hands them over to a Network,
// which runs the updatable components in pipeline order.
//
// The handshake only ever narrows a set against a unique neighbour. Two
// adjacent components that are both still ambiguous are left as they are and
// reported as residual ambiguity.
package network
