// Package domain defines the core types and contracts of the limits service.
//
// The Ledger interface covers all mutations of quota state; implementations
// must make every mutation a single atomic step so that concurrent callers
// never observe torn intermediate state.
package domain
