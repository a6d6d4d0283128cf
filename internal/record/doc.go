// Package record defines the value types carried by item records.
//
// A record is an Object: a map of field names to sealed Values. Only
// Null, String, Int, Bool, Array and Object implement Value, so records
// decoded from fixtures always have a predictable shape.
//
// Key constraints:
//   - No float types. Numbers are int64; fixtures containing floats are rejected.
//   - Object keys are ordered by UTF-16 code units whenever they are serialized.
//   - Strings are stored and serialized exactly as given. Objects whose keys
//     collide under NFC normalization are rejected.
package record
