// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence/transport details and mark the write
// boundaries where stock, order and cart state must change atomically.
package aggregates
