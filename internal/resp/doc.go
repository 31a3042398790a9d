// Package resp implements an in-memory model for RESP2 and RESP3 values
// together with a streaming parser and writer.
//
// Values are immutable and compact: payloads up to InlineSize bytes live
// directly inside a fixed 16-byte state, and an aggregate holding exactly
// one such value is folded into its parent's state. Parsed values may
// borrow from the input sequence; call Preserve to keep one alive past the
// buffer it was parsed from.
package resp
