// Package dag provides a small directed graph used to order the updatable
// components of a realized network. It detects cycles and produces a
// deterministic topological order.
package dag
