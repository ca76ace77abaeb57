// Package piecetable implements the text storage for a buffer as a piece
// table: two backing byte buffers (the immutable original file content and
// an append-only add buffer) plus an ordered sequence of pieces referencing
// spans of those buffers. The document text is the concatenation of the
// pieces in order.
//
// Each piece caches the offsets of the line breaks it contains, so line and
// column queries walk the piece list instead of the text. Lookups are linear
// in the number of pieces; piece count stays small relative to document size
// under normal editing, and Compact merges adjacent pieces that reference
// contiguous spans of the same backing buffer.
//
// The table is not safe for concurrent use. Iterators are read-only views
// and are invalidated by any mutation; callers must not retain an iterator
// across Insert, Delete, or RestorePieces.
package piecetable
