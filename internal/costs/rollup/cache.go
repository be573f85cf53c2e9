// Package rollup implements the drill-down cache behind the cost
// hierarchy: per-node, per-period cost cells that are fetched lazily on
// expansion, kept warm across period switches, and guarded against
// duplicate and stale fetches.
package rollup

import (
	"costscope/internal/costs"
)

// State of one (node, period) cache cell.
type State int

const (
	// StatePending marks a cell whose fetch was issued but has not resolved
	StatePending State = iota
	// StateOK marks a cell holding a resolved response
	StateOK
	// StateErr marks a cell whose fetch failed; the failure is local to the cell
	StateErr
)

// Entry is one (node, period) cache cell. Cells are overwritten
// wholesale on refetch, never merged.
type Entry struct {
	State    State
	Response *costs.CostResponse
	Err      error
}

// FetchRequest tells the hosting loop to fetch cost data for one scope
// and period. Seq must be passed back to Complete unchanged; a
// completion whose Seq is no longer the latest issued for its key is
// discarded.
type FetchRequest struct {
	Scope  costs.Scope
	Period costs.Period
	Seq    uint64
}

// Node is one expandable hierarchy entry (a team or a project). Nodes
// are created lazily on first reference and live only as long as their
// Cache. Only the Cache mutates Expanded and the cells.
type Node struct {
	Scope    costs.Scope
	Expanded bool

	entries map[costs.Period]*Entry
	seqs    map[costs.Period]uint64
}

// Cache owns the hierarchy nodes of one report session. It performs no
// I/O itself: Toggle and Refresh return the fetch the host must issue,
// and the host feeds the outcome back through Complete. All methods
// must be called from a single goroutine (the hosting event loop), so
// the cache takes no locks; correctness rests on the cell being marked
// Pending before the request is handed out.
type Cache struct {
	nodes  map[string]*Node
	period costs.Period
}

// New creates an empty cache with the given active period.
func New(period costs.Period) *Cache {
	return &Cache{
		nodes:  make(map[string]*Node),
		period: period,
	}
}

// Period returns the active period.
func (c *Cache) Period() costs.Period {
	return c.period
}

// SetPeriod records a period switch. Nothing is evicted and nothing is
// fetched: cells for the old period stay warm so switching back is
// free, and each node fetches the new period lazily on its next
// expansion or refresh.
func (c *Cache) SetPeriod(p costs.Period) {
	c.period = p
}

// Node returns the node for a scope, creating it on first reference.
func (c *Cache) Node(scope costs.Scope) *Node {
	key := scope.String()
	if n, ok := c.nodes[key]; ok {
		return n
	}
	n := &Node{
		Scope:   scope,
		entries: make(map[costs.Period]*Entry),
		seqs:    make(map[costs.Period]uint64),
	}
	c.nodes[key] = n
	return n
}

// Toggle flips a node between expanded and collapsed. On the transition
// to expanded it returns the fetch to issue, but only when the period
// has no cell yet: an existing Pending, OK or Err cell means no
// duplicate fetch, which keeps at most one toggle-driven fetch in
// flight per (node, period). Collapsing never evicts.
func (c *Cache) Toggle(scope costs.Scope, period costs.Period) *FetchRequest {
	n := c.Node(scope)
	n.Expanded = !n.Expanded
	if !n.Expanded {
		return nil
	}
	if _, ok := n.entries[period]; ok {
		return nil
	}
	return c.issue(n, period)
}

// Refresh forces a new fetch for one node and period regardless of the
// cell's state, overwriting it with Pending. An in-flight fetch for the
// same key is not cancelled; its completion loses the sequence check.
// Cells for other periods are untouched.
func (c *Cache) Refresh(scope costs.Scope, period costs.Period) *FetchRequest {
	return c.issue(c.Node(scope), period)
}

// issue marks the cell Pending and allocates the next sequence number
// for the key, before the request is handed to the host. This closes
// the race where two rapid toggles both observe an absent cell.
func (c *Cache) issue(n *Node, period costs.Period) *FetchRequest {
	n.seqs[period]++
	n.entries[period] = &Entry{State: StatePending}
	return &FetchRequest{Scope: n.Scope, Period: period, Seq: n.seqs[period]}
}

// Complete applies a fetch outcome to its cell. The outcome is
// discarded unless seq is still the latest issued for the (node,
// period) key, so a stale response never overwrites the result of a
// fresher request. Reports whether the outcome was applied.
func (c *Cache) Complete(scope costs.Scope, period costs.Period, seq uint64, resp *costs.CostResponse, err error) bool {
	n, ok := c.nodes[scope.String()]
	if !ok || n.seqs[period] != seq {
		return false
	}
	if err != nil {
		n.entries[period] = &Entry{State: StateErr, Err: err}
		return true
	}
	n.entries[period] = &Entry{State: StateOK, Response: resp}
	return true
}

// Entry returns the cell for a node and period, if one exists.
func (c *Cache) Entry(scope costs.Scope, period costs.Period) (*Entry, bool) {
	n, ok := c.nodes[scope.String()]
	if !ok {
		return nil, false
	}
	e, ok := n.entries[period]
	return e, ok
}

// Expanded reports whether a node is currently expanded.
func (c *Cache) Expanded(scope costs.Scope) bool {
	n, ok := c.nodes[scope.String()]
	return ok && n.Expanded
}

// Snapshot collects the resolved responses of every node of one kind
// for a period, keyed by scope ID. Pending and failed cells are left
// out; the exporter renders what is here and nothing else.
func (c *Cache) Snapshot(kind costs.ScopeKind, period costs.Period) map[string]*costs.CostResponse {
	out := make(map[string]*costs.CostResponse)
	for _, n := range c.nodes {
		if n.Scope.Kind != kind {
			continue
		}
		if e, ok := n.entries[period]; ok && e.State == StateOK {
			out[n.Scope.ID] = e.Response
		}
	}
	return out
}
