// Package harness runs grammar scenarios for conformance testing.
//
// A scenario pairs a CUE grammar with input texts and their expected
// parse outcomes. The harness builds the grammar once, walks each input
// through a fresh parsing process and checks the outcomes; golden-file
// helpers snapshot the results for regression comparison.
package harness
