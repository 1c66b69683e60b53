// Package model defines the stable enumerations shared by every layer of ddbgo.
//
// # Forms
//
// A Form is the structural shape of a value:
//
//   - Scalar, Pair, Vector, Matrix: contiguous typed storage
//   - Set, Dictionary: keyed collections over a fixed key type
//   - Table: ordered named columns sharing one row count
//
// # Types
//
// A Type is the element-level data type, distinct from the form. Numeric
// codes of Form and Type are the wire contract of the handle boundary and
// never change.
//
// # Null Sentinels
//
// Nulls are stored in-band as type-specific sentinels (see NullInt32 and
// friends), so a typed accessor on a null element returns the sentinel.
package model
