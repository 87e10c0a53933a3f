// Package compiler turns network definitions into an ir.Network.
//
// Two source forms are accepted:
//
//	broadcaster -> a, b, c      text grammar (Parse)
//	%a -> b                     Toggle module
//	&inv -> a                   AllHigh module
//
// and a CUE form with a "broadcaster" list and a "modules" struct
// (CompileCUE). LoadFile picks the form from the file extension.
//
// Check reports topology findings (unreachable modules, feedback loops,
// loops that can never drain) without running the network.
package compiler
