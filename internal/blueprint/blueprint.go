package blueprint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/superelastix/internal/criteria"
)

// ErrNotFound is returned when a component or connection does not exist.
var ErrNotFound = errors.New("not found")

type node struct {
	id       int
	name     string
	criteria criteria.Map
	in       []int
	out      []int
}

type edgeKey struct {
	from, to int
}

// Connection is a directed edge between two named components.
type Connection struct {
	Upstream   string
	Downstream string
	Criteria   criteria.Map
}

// Blueprint is a directed graph of named components and their connections.
// It is not safe for concurrent mutation.
type Blueprint struct {
	ids      map[string]int
	nodes    map[int]*node
	order    []int
	edges    map[edgeKey]criteria.Map
	nextID   int
	revision uint64
}

// New creates and returns an initialized, empty Blueprint.
func New() *Blueprint {
	return &Blueprint{
		ids:   make(map[string]int),
		nodes: make(map[int]*node),
		edges: make(map[edgeKey]criteria.Map),
	}
}

// Revision increases every time the blueprint changes.
func (b *Blueprint) Revision() uint64 { return b.revision }

func (b *Blueprint) lookup(name string) (*node, bool) {
	id, ok := b.ids[name]
	if !ok {
		return nil, false
	}
	return b.nodes[id], true
}

// SetComponent creates the component or replaces its criteria.
func (b *Blueprint) SetComponent(name string, m criteria.Map) bool {
	if n, ok := b.lookup(name); ok {
		if !n.criteria.Equal(m) {
			n.criteria = m.Clone()
			b.revision++
		}
		return true
	}
	id := b.nextID
	b.nextID++
	b.ids[name] = id
	b.nodes[id] = &node{id: id, name: name, criteria: m.Clone()}
	b.order = append(b.order, id)
	b.revision++
	return true
}

// GetComponent returns a copy of the component's criteria.
func (b *Blueprint) GetComponent(name string) (criteria.Map, error) {
	n, ok := b.lookup(name)
	if !ok {
		return nil, fmt.Errorf("component '%s': %w", name, ErrNotFound)
	}
	return n.criteria.Clone(), nil
}

// ComponentExists reports whether a component with this name exists.
func (b *Blueprint) ComponentExists(name string) bool {
	_, ok := b.ids[name]
	return ok
}

// DeleteComponent removes the component and every connection touching it.
func (b *Blueprint) DeleteComponent(name string) bool {
	n, ok := b.lookup(name)
	if !ok {
		return false
	}
	for _, up := range slices.Clone(n.in) {
		b.removeEdge(up, n.id)
	}
	for _, down := range slices.Clone(n.out) {
		b.removeEdge(n.id, down)
	}
	delete(b.ids, name)
	delete(b.nodes, n.id)
	b.order = slices.DeleteFunc(b.order, func(id int) bool { return id == n.id })
	b.revision++
	return true
}

// SetConnection creates the connection or replaces its criteria. It returns
// false when either endpoint is not a component of the blueprint.
func (b *Blueprint) SetConnection(upstream, downstream string, m criteria.Map) bool {
	up, ok := b.lookup(upstream)
	if !ok {
		return false
	}
	down, ok := b.lookup(downstream)
	if !ok {
		return false
	}
	key := edgeKey{from: up.id, to: down.id}
	if existing, ok := b.edges[key]; ok {
		if !existing.Equal(m) {
			b.edges[key] = m.Clone()
			b.revision++
		}
		return true
	}
	b.edges[key] = m.Clone()
	up.out = append(up.out, down.id)
	down.in = append(down.in, up.id)
	b.revision++
	return true
}

// GetConnection returns a copy of the connection's criteria.
func (b *Blueprint) GetConnection(upstream, downstream string) (criteria.Map, error) {
	key, ok := b.edgeKey(upstream, downstream)
	if !ok {
		return nil, fmt.Errorf("connection '%s' -> '%s': %w", upstream, downstream, ErrNotFound)
	}
	m, ok := b.edges[key]
	if !ok {
		return nil, fmt.Errorf("connection '%s' -> '%s': %w", upstream, downstream, ErrNotFound)
	}
	return m.Clone(), nil
}

// ConnectionExists reports whether upstream connects to downstream.
func (b *Blueprint) ConnectionExists(upstream, downstream string) bool {
	key, ok := b.edgeKey(upstream, downstream)
	if !ok {
		return false
	}
	_, ok = b.edges[key]
	return ok
}

// DeleteConnection removes the connection, if present.
func (b *Blueprint) DeleteConnection(upstream, downstream string) bool {
	key, ok := b.edgeKey(upstream, downstream)
	if !ok {
		return false
	}
	if _, ok := b.edges[key]; !ok {
		return false
	}
	b.removeEdge(key.from, key.to)
	b.revision++
	return true
}

func (b *Blueprint) edgeKey(upstream, downstream string) (edgeKey, bool) {
	up, ok := b.ids[upstream]
	if !ok {
		return edgeKey{}, false
	}
	down, ok := b.ids[downstream]
	if !ok {
		return edgeKey{}, false
	}
	return edgeKey{from: up, to: down}, true
}

func (b *Blueprint) removeEdge(from, to int) {
	delete(b.edges, edgeKey{from: from, to: to})
	fn, tn := b.nodes[from], b.nodes[to]
	fn.out = slices.DeleteFunc(fn.out, func(id int) bool { return id == to })
	tn.in = slices.DeleteFunc(tn.in, func(id int) bool { return id == from })
}

func (b *Blueprint) names(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.nodes[id].name)
	}
	return out
}

// InputNames returns the upstream neighbours of a component in the order
// their connections were created.
func (b *Blueprint) InputNames(name string) ([]string, error) {
	n, ok := b.lookup(name)
	if !ok {
		return nil, fmt.Errorf("component '%s': %w", name, ErrNotFound)
	}
	return b.names(n.in), nil
}

// OutputNames returns the downstream neighbours of a component in the order
// their connections were created.
func (b *Blueprint) OutputNames(name string) ([]string, error) {
	n, ok := b.lookup(name)
	if !ok {
		return nil, fmt.Errorf("component '%s': %w", name, ErrNotFound)
	}
	return b.names(n.out), nil
}

// ComponentNames returns all component names in insertion order.
func (b *Blueprint) ComponentNames() []string {
	return b.names(b.order)
}

// Connections returns every connection, grouped by upstream component in
// insertion order.
func (b *Blueprint) Connections() []Connection {
	var out []Connection
	for _, id := range b.order {
		n := b.nodes[id]
		for _, to := range n.out {
			out = append(out, Connection{
				Upstream:   n.name,
				Downstream: b.nodes[to].name,
				Criteria:   b.edges[edgeKey{from: id, to: to}].Clone(),
			})
		}
	}
	return out
}

// Clone returns an independent copy with the same revision.
func (b *Blueprint) Clone() *Blueprint {
	c := &Blueprint{
		ids:      make(map[string]int, len(b.ids)),
		nodes:    make(map[int]*node, len(b.nodes)),
		order:    slices.Clone(b.order),
		edges:    make(map[edgeKey]criteria.Map, len(b.edges)),
		nextID:   b.nextID,
		revision: b.revision,
	}
	for name, id := range b.ids {
		c.ids[name] = id
	}
	for id, n := range b.nodes {
		c.nodes[id] = &node{
			id:       n.id,
			name:     n.name,
			criteria: n.criteria.Clone(),
			in:       slices.Clone(n.in),
			out:      slices.Clone(n.out),
		}
	}
	for k, m := range b.edges {
		c.edges[k] = m.Clone()
	}
	return c
}

// Validate checks the structural invariants of the blueprint. Problems are
// reported in connection order.
func (b *Blueprint) Validate() error {
	keys := make([]edgeKey, 0, len(b.edges))
	for key := range b.edges {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(x, y edgeKey) int {
		if x.from != y.from {
			return x.from - y.from
		}
		return x.to - y.to
	})

	var errs []error
	for _, key := range keys {
		from, okFrom := b.nodes[key.from]
		to, okTo := b.nodes[key.to]
		switch {
		case !okFrom && !okTo:
			errs = append(errs, fmt.Errorf("connection between unknown component ids %d and %d", key.from, key.to))
		case !okFrom:
			errs = append(errs, fmt.Errorf("connection to '%s' from an undeclared component", to.name))
		case !okTo:
			errs = append(errs, fmt.Errorf("connection from '%s' to an undeclared component", from.name))
		}
	}
	return errors.Join(errs...)
}
