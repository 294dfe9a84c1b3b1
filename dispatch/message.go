package dispatch

import (
	"fmt"
	"strings"
)

// Message is the positional half of a conversation: an ordered sequence
// of items consumed from the front. Processes treat the head as the next
// instruction; conditions inspect it without consuming.
type Message struct {
	items []any
}

// NewMessage builds a message from the given items in order. Items are
// kept as passed; nothing is flattened here (replies returned by events
// are spliced by the process when they are inserted, not at build time).
func NewMessage(items ...any) *Message {
	m := &Message{}
	m.items = append(m.items, items...)
	return m
}

// Len returns the number of items left in the message.
func (m *Message) Len() int { return len(m.items) }

// IsEmpty reports whether the message has no items left.
func (m *Message) IsEmpty() bool { return len(m.items) == 0 }

// Head returns the first item without consuming it, or nil when empty.
func (m *Message) Head() any {
	if len(m.items) == 0 {
		return nil
	}
	return m.items[0]
}

// Pop removes and returns the first item, or nil when empty.
func (m *Message) Pop() any {
	if len(m.items) == 0 {
		return nil
	}
	head := m.items[0]
	m.items = m.items[1:]
	return head
}

// At returns the item at index i, or nil when out of range.
func (m *Message) At(i int) any {
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return m.items[i]
}

// Push appends items to the back of the message.
func (m *Message) Push(items ...any) {
	m.items = append(m.items, items...)
}

// Clear drops all remaining items.
func (m *Message) Clear() { m.items = nil }

// Items returns the remaining items. The slice is shared with the
// message; callers must not modify it.
func (m *Message) Items() []any { return m.items }

// Copy returns an independent message with the same items.
func (m *Message) Copy() *Message {
	c := &Message{items: make([]any, len(m.items))}
	copy(c.items, m.items)
	return c
}

func (m *Message) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, it := range m.items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", it)
	}
	b.WriteByte(']')
	return b.String()
}

// Splice flattens items one level: each []any argument contributes its
// elements in place, everything else is kept as a single item. Replies
// that embed previously computed replies use this to stay flat.
func Splice(items ...any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		if list, ok := it.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, it)
	}
	return out
}
