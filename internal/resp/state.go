package resp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// InlineSize is the number of payload bytes a state can hold without
// external storage.
const InlineSize = 12

// storageKind discriminates what the 12-byte payload area of a state means
// and which owner fields of the enclosing Value are live.
type storageKind byte

const (
	storageUninitialized storageKind = iota
	storageNull
	storageEmpty
	storageInlinedBytes
	storageInlinedUint32
	storageInlinedInt64
	storageInlinedDouble
	storageByteSlice     // offset+length into Value.buf
	storageStringSegment // offset+length into Value.str
	storageValueSlice    // offset+length into Value.items
	storageByteSequence  // start/end offsets into the Value.first..Value.last chain
)

func (k storageKind) String() string {
	switch k {
	case storageUninitialized:
		return "uninitialized"
	case storageNull:
		return "null"
	case storageEmpty:
		return "empty"
	case storageInlinedBytes:
		return "inlined-bytes"
	case storageInlinedUint32:
		return "inlined-uint32"
	case storageInlinedInt64:
		return "inlined-int64"
	case storageInlinedDouble:
		return "inlined-double"
	case storageByteSlice:
		return "byte-slice"
	case storageStringSegment:
		return "string-segment"
	case storageValueSlice:
		return "value-slice"
	case storageByteSequence:
		return "byte-sequence"
	}
	return fmt.Sprintf("storageKind(%d)", byte(k))
}

// state is the fixed 16-byte value carrier. The payload area holds inline
// bytes, one scalar, or an offset pair, depending on storage.
type state struct {
	data       [InlineSize]byte
	payloadLen byte // 0..InlineSize, meaningful only for storageInlinedBytes
	typ        Type
	subType    Type // non-Unknown only on a wrapped unit aggregate
	storage    storageKind
}

func newNullState(t Type) state {
	return state{typ: t, subType: TypeUnknown, storage: storageNull}
}

func newEmptyState(t Type) state {
	return state{typ: t, subType: TypeUnknown, storage: storageEmpty}
}

// newSegmentState builds a state pointing into external storage. The second
// integer is a length for slice kinds and an end offset for sequences.
func newSegmentState(t Type, k storageKind, start, lengthOrEnd uint32, sub Type) state {
	switch k {
	case storageByteSlice, storageStringSegment, storageValueSlice, storageByteSequence:
	default:
		panic("resp: " + k.String() + " is not an external storage kind")
	}
	s := state{typ: t, subType: sub, storage: k}
	binary.LittleEndian.PutUint32(s.data[0:4], start)
	binary.LittleEndian.PutUint32(s.data[4:8], lengthOrEnd)
	return s
}

func newInt64State(t Type, v int64, sub Type) state {
	s := state{typ: t, subType: sub, storage: storageInlinedInt64}
	binary.LittleEndian.PutUint64(s.data[0:8], uint64(v))
	return s
}

func newUint32State(t Type, v uint32, sub Type) state {
	s := state{typ: t, subType: sub, storage: storageInlinedUint32}
	binary.LittleEndian.PutUint32(s.data[0:4], v)
	return s
}

func newDoubleState(t Type, v float64, sub Type) state {
	s := state{typ: t, subType: sub, storage: storageInlinedDouble}
	binary.LittleEndian.PutUint64(s.data[0:8], math.Float64bits(v))
	return s
}

// newInlineState copies payload into the inline area. Longer payloads are a
// caller bug.
func newInlineState(payload []byte, t Type, sub Type) state {
	if len(payload) > InlineSize {
		panic(fmt.Sprintf("resp: inline payload of %d bytes exceeds %d", len(payload), InlineSize))
	}
	s := state{typ: t, subType: sub, storage: storageInlinedBytes, payloadLen: byte(len(payload))}
	copy(s.data[:], payload)
	return s
}

func (s state) start() uint32  { return binary.LittleEndian.Uint32(s.data[0:4]) }
func (s state) length() uint32 { return binary.LittleEndian.Uint32(s.data[4:8]) }

// end is the exclusive offset into the last segment of a byte sequence.
func (s state) end() uint32 { return binary.LittleEndian.Uint32(s.data[4:8]) }

func (s state) int64v() int64     { return int64(binary.LittleEndian.Uint64(s.data[0:8])) }
func (s state) uint32v() uint32   { return binary.LittleEndian.Uint32(s.data[0:4]) }
func (s state) float64v() float64 { return math.Float64frombits(binary.LittleEndian.Uint64(s.data[0:8])) }

func (s state) inlineBytes() []byte { return s.data[:s.payloadLen] }

func (s state) isInlined() bool {
	switch s.storage {
	case storageInlinedBytes, storageInlinedUint32, storageInlinedInt64, storageInlinedDouble:
		return true
	}
	return false
}

// canWrap reports whether this state may be folded into a unit aggregate.
func (s state) canWrap() bool {
	return s.isInlined() && s.subType == TypeUnknown
}

// canUnwrap reports whether this state is a folded unit aggregate.
func (s state) canUnwrap() bool {
	return s.isInlined() && s.subType != TypeUnknown
}

// wrap folds this inline state into an aggregate of type parent, recording
// the original type in subType. The payload area is untouched.
func (s state) wrap(parent Type) state {
	if !s.canWrap() {
		panic("resp: wrap on a state that cannot be wrapped")
	}
	s.subType = s.typ
	s.typ = parent
	return s
}

// unwrap inverts wrap, restoring the child state.
func (s state) unwrap() state {
	if !s.canUnwrap() {
		panic("resp: unwrap on a state that is not wrapped")
	}
	s.typ = s.subType
	s.subType = TypeUnknown
	return s
}
