// Package analyzer answers the two questions asked of a pulse network.
//
// Aggregate totals High and Low pulses over N presses. It hashes
// the network state before every press and, once a state repeats, replays
// the recorded per-press counts of the cycle instead of simulating the
// remaining presses.
//
// Align finds, for the AllHigh gate feeding a terminal target, the
// first press at which each gate input is recorded High, and returns the
// LCM of those presses as the predicted first press that sends Low to the
// target.
//
// Both analyses work on a clone of the network passed in; the caller's
// network is never mutated.
package analyzer
