package dispatch

import "sort"

// Context is the keyed half of a conversation. A single context is
// shared by every element a process visits during one run, so elements
// use it to publish and read cross-cutting values (remaining text,
// per-element state, the current sender, and so on).
type Context struct {
	values map[string]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{values: map[string]any{}}
}

// NewContextWith returns a context holding a copy of the given values.
func NewContextWith(values map[string]any) *Context {
	c := NewContext()
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Get returns the value for key, or nil when absent.
func (c *Context) Get(key string) any { return c.values[key] }

// Lookup returns the value for key and whether it is present.
func (c *Context) Lookup(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set stores value under key.
func (c *Context) Set(key string, value any) { c.values[key] = value }

// Delete removes key if present.
func (c *Context) Delete(key string) { delete(c.values, key) }

// Pop removes key and returns its former value and presence.
func (c *Context) Pop(key string) (any, bool) {
	v, ok := c.values[key]
	if ok {
		delete(c.values, key)
	}
	return v, ok
}

// Merge copies every entry of other into c, overwriting on collision.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}
	for k, v := range other.values {
		c.values[k] = v
	}
}

// Len returns the number of entries.
func (c *Context) Len() int { return len(c.values) }

// Keys returns the present keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
