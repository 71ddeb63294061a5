// Package ledger implements the experience ledger: the ordered set of work
// experience records, their duration breakdowns and the aggregate total.
//
// # Records
//
// A Record captures one employer, the position held and a join/leave date
// range. An open-ended record (still employed) has a zero LeaveDate, which is
// persisted as the literal string "Present". Every record carries a derived
// Duration, recomputed whenever its dates change.
//
// # Duration Arithmetic
//
// Durations are an approximation with fixed divisors, not calendar math:
//
//	days   = ceil(|effectiveLeave - join|) in whole days
//	years  = days / 365
//	months = (days % 365) / 30
//	rest   = days % 30
//
// The aggregate sums years, months and days independently and then carries
// days into months (30) and months into years (12). The divisors are part of
// the observable output; changing them changes every stored record.
//
// # Persistence
//
// The ledger owns its records and mirrors them into an injected Storage under a
// single key. Every mutation serializes the whole list. Reads fail soft: an
// absent or unparsable value yields an empty ledger. Writes are staged on a copy
// and only committed to memory once the storage accepted them, so a failed save
// leaves the ledger exactly as it was and returns a *StorageWriteError.
package ledger
