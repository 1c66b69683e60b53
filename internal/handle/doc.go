// Package handle provides the table of opaque ids handed across the flat
// boundary.
//
// An ID packs a slot index (low 32 bits) and the slot's generation (high 32
// bits). Releasing a slot bumps its generation, so a stale ID never resolves
// to whatever object later reuses the slot. Each slot points at a
// ref-counted block; several IDs may share a block, and the object is
// dropped when the last ID referring to it is released.
//
// # Safety
//
// All methods are safe for concurrent use and return errors instead of
// panicking. ID 0 is never issued.
package handle
