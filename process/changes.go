// Package process implements the interpreters that walk graphs: the
// base Process queue loop, shared-context commands, transactional
// speculation (StackingProcess), per-element state (StatefulProcess)
// and text parsing (ParsingProcess). Each layer wraps the previous one
// through explicit seams, so a ParsingProcess is a StatefulProcess is a
// StackingProcess all the way down.
package process

import "github.com/graphtalk/graphtalk/dispatch"

// ChangeKind enumerates the recordable mutations.
type ChangeKind int

const (
	OpAdd ChangeKind = iota + 1
	OpSet
	OpDelete
)

// Table is the mutable mapping a change is recorded against: the shared
// context (string keys) or an element-state table (element keys).
type Table interface {
	Lookup(key any) (any, bool)
	Put(key, value any)
	Drop(key any)
}

// DictChange is one recorded mutation of a Table. Do applies it while
// capturing whatever is needed to reverse it; Undo restores the exact
// prior state. A set against a missing key downgrades itself to an add
// when applied, so undoing it removes the key instead of restoring a
// value that never existed.
type DictChange struct {
	table Table
	kind  ChangeKind
	key   any
	value any

	prior any
}

// NewDictChange records an intent; nothing is applied until Do.
func NewDictChange(table Table, kind ChangeKind, key, value any) *DictChange {
	return &DictChange{table: table, kind: kind, key: key, value: value}
}

// Do applies the change, capturing the prior value for Undo.
func (c *DictChange) Do() {
	if c.kind == OpSet {
		if _, present := c.table.Lookup(c.key); !present {
			c.kind = OpAdd
		}
	}
	switch c.kind {
	case OpAdd:
		c.table.Put(c.key, c.value)
	case OpSet:
		c.prior, _ = c.table.Lookup(c.key)
		c.table.Put(c.key, c.value)
	case OpDelete:
		c.prior, _ = c.table.Lookup(c.key)
		c.table.Drop(c.key)
	}
}

// Undo reverses the change exactly.
func (c *DictChange) Undo() {
	switch c.kind {
	case OpAdd:
		c.table.Drop(c.key)
	case OpSet:
		c.table.Put(c.key, c.prior)
	case OpDelete:
		c.table.Put(c.key, c.prior)
	}
}

// Merge folds other into c when both are plain sets of the same key on
// the same table. Only already-applied sets merge; an add never
// coalesces with the set that follows it, keeping undo exact.
func (c *DictChange) Merge(other *DictChange) bool {
	if c.kind != OpSet || other.kind != OpSet {
		return false
	}
	if c.table != other.table || !dispatch.Equal(c.key, other.key) {
		return false
	}
	c.value = other.value
	return true
}

// ChangeGroup is one speculative region: an ordered log of changes that
// can be replayed or rolled back as a unit.
type ChangeGroup struct {
	changes []*DictChange
}

// NewChangeGroup returns an empty group.
func NewChangeGroup() *ChangeGroup { return &ChangeGroup{} }

// Add records and applies a change, merging consecutive sets of the
// same key.
func (g *ChangeGroup) Add(c *DictChange) {
	if n := len(g.changes); n == 0 || !g.changes[n-1].Merge(c) {
		g.changes = append(g.changes, c)
	}
	c.Do()
}

// Do replays the whole group in order.
func (g *ChangeGroup) Do() {
	for _, c := range g.changes {
		c.Do()
	}
}

// Undo rolls the whole group back in reverse order.
func (g *ChangeGroup) Undo() {
	for i := len(g.changes) - 1; i >= 0; i-- {
		g.changes[i].Undo()
	}
}

// Len returns the number of recorded changes.
func (g *ChangeGroup) Len() int { return len(g.changes) }
