// Package graph implements the declarative entity model: named notions,
// directed relations between them, and the Graph container that owns
// both. Elements do not execute anything on their own; they answer
// messages sent by a process (see package process) with replies that
// steer the walk.
//
// Control flow lives in relation types: NextRelation for plain
// sequencing, ParsingRelation for text-consuming transitions,
// LoopRelation for bounded and custom repetition, and SelectiveNotion
// for ranked alternatives with retry. Builder offers a chainable way to
// assemble all of it.
package graph
