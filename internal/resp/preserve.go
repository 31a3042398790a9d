package resp

import "fmt"

// needsPreserve reports whether the value, or any child, references a
// buffer the caller may reuse.
func (v Value) needsPreserve() bool {
	switch v.state.storage {
	case storageByteSlice, storageByteSequence:
		return true
	case storageValueSlice:
		for _, c := range v.SubItems() {
			if c.needsPreserve() {
				return true
			}
		}
	}
	return false
}

// Preserve returns a value free of borrowed parse buffers, safe to keep
// after the input sequence is reused. Borrowed byte storages are copied
// into fresh owned arrays; aggregates are preserved transitively; string
// segments are backed by immutable strings and pass through, as do inline
// and scalar values. Preserve is idempotent.
func (v Value) Preserve() Value {
	if !v.needsPreserve() {
		return v
	}
	s := v.state
	switch s.storage {
	case storageByteSlice, storageByteSequence:
		owned := v.appendPayload(nil)
		return Value{
			state: newSegmentState(s.typ, storageByteSlice, 0, uint32(len(owned)), s.subType),
			buf:   owned,
		}
	case storageValueSlice:
		src := v.SubItems()
		items := make([]Value, len(src))
		for i, c := range src {
			items[i] = c.Preserve()
		}
		return Value{
			state: newSegmentState(s.typ, storageValueSlice, 0, uint32(len(items)), TypeUnknown),
			items: items,
		}
	}
	panic(fmt.Sprintf("resp: %v: %v", ErrStorageKindNotImplemented, s.storage))
}
