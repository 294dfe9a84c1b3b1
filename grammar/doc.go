// Package grammar loads declarative graph definitions written in CUE
// and builds executable graphs from them.
//
// A definition names its notions and relations; the builder wires them
// into a graph.Graph that a process can walk. Loading and building are
// separate steps so callers can validate definitions without
// constructing anything.
package grammar
