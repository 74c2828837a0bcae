// Package view holds the overlay's screen flow as an explicit state machine.
//
// Widget visibility is a projection of Machine state, never a separate
// source of truth. The machine performs no I/O and is mutated only by the
// controller package.
//
//	Handshake ──greeted──> CorpusEntry ──submit dir──> Loading
//	                          ^   ^                       │
//	                          │   └──── failure ──────────┤
//	                          │                           └─ index built ─> QueryEntry
//	                         esc                                              │
//	                          │          ┌──── failure ─── QueryLoading <─ submit query
//	                          │          v                     │
//	                          └──── QueryEntry / Results <── success
//
// The error overlay is a flag on top of whichever state is current. It never
// blocks a new submission and is cleared by the next success or by Dismiss.
package view
