package resp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Value is an immutable RESP value: one 16-byte state plus the owner fields
// the state may point into. Exactly one owner group is live per storage
// kind; inline and scalar values carry no owners at all.
type Value struct {
	state state
	buf   []byte   // storageByteSlice
	str   string   // storageStringSegment
	items []Value  // storageValueSlice
	first *Segment // storageByteSequence
	last  *Segment
}

// Null is the canonical null value.
var Null = Value{state: newNullState(TypeNull)}

// MakeNullOf constructs a typed null, e.g. a null BlobString.
func MakeNullOf(t Type) Value {
	return Value{state: newNullState(t)}
}

// MakeBytes constructs a leaf value from a byte payload. Payloads up to
// InlineSize bytes are copied into the state; longer payloads are borrowed
// from p, so p must stay alive and unmodified for the value's lifetime.
func MakeBytes(t Type, p []byte) Value {
	if t.IsAggregate() || t == TypeUnknown {
		panic("resp: MakeBytes requires a leaf type, got " + t.String())
	}
	switch {
	case len(p) == 0:
		return Value{state: newEmptyState(t)}
	case len(p) <= InlineSize:
		return Value{state: newInlineState(p, t, TypeUnknown)}
	default:
		return Value{
			state: newSegmentState(t, storageByteSlice, 0, uint32(len(p)), TypeUnknown),
			buf:   p,
		}
	}
}

// MakeString constructs a leaf value from a string. Short strings are
// inlined; longer ones reference the immutable string without copying.
func MakeString(t Type, s string) Value {
	if t.IsAggregate() || t == TypeUnknown {
		panic("resp: MakeString requires a leaf type, got " + t.String())
	}
	switch {
	case len(s) == 0:
		return Value{state: newEmptyState(t)}
	case len(s) <= InlineSize:
		var tmp [InlineSize]byte
		n := copy(tmp[:], s)
		return Value{state: newInlineState(tmp[:n], t, TypeUnknown)}
	default:
		return Value{
			state: newSegmentState(t, storageStringSegment, 0, uint32(len(s)), TypeUnknown),
			str:   s,
		}
	}
}

// MakeInt constructs a leaf value holding an int64 scalar.
func MakeInt(t Type, n int64) Value {
	if t.IsAggregate() || t == TypeUnknown {
		panic("resp: MakeInt requires a leaf type, got " + t.String())
	}
	return Value{state: newInt64State(t, n, TypeUnknown)}
}

// MakeUint constructs a leaf value holding a uint32 scalar.
func MakeUint(t Type, n uint32) Value {
	if t.IsAggregate() || t == TypeUnknown {
		panic("resp: MakeUint requires a leaf type, got " + t.String())
	}
	return Value{state: newUint32State(t, n, TypeUnknown)}
}

// MakeDouble constructs a leaf value holding a float64 scalar.
func MakeDouble(t Type, f float64) Value {
	if t.IsAggregate() || t == TypeUnknown {
		panic("resp: MakeDouble requires a leaf type, got " + t.String())
	}
	return Value{state: newDoubleState(t, f, TypeUnknown)}
}

// MakeAggregate constructs an aggregate value over the caller's child
// slice. A single wrappable child is folded into the parent's state so the
// common unary case allocates nothing.
func MakeAggregate(t Type, vals []Value) Value {
	arity := t.Arity()
	if arity == 0 {
		panic("resp: MakeAggregate requires an aggregate type, got " + t.String())
	}
	if len(vals)%arity != 0 {
		panic(fmt.Sprintf("resp: %d children do not divide by arity %d for %s", len(vals), arity, t))
	}
	switch {
	case len(vals) == 0:
		return Value{state: newEmptyState(t)}
	case len(vals) == 1 && vals[0].state.canWrap():
		return Value{state: vals[0].state.wrap(t)}
	default:
		return Value{
			state: newSegmentState(t, storageValueSlice, 0, uint32(len(vals)), TypeUnknown),
			items: vals,
		}
	}
}

// Convenience constructors in the shape redis handlers want.

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value { return MakeString(TypeSimpleString, s) }

// MakeError construct SimpleError Value from string
func MakeError(s string) Value { return MakeString(TypeSimpleError, s) }

// MakeErrorWrongNumberOfArguments construct SimpleError Value that command had wrong number of arguments
func MakeErrorWrongNumberOfArguments(cmd string) Value {
	return MakeError(fmt.Sprintf("wrong number of arguments for %s command", cmd))
}

// MakeBlobString construct BlobString Value from string
func MakeBlobString(s string) Value { return MakeString(TypeBlobString, s) }

// MakeNumber construct Number Value from int64
func MakeNumber(n int64) Value { return MakeInt(TypeNumber, n) }

// MakeBoolean construct Boolean Value; the payload is the wire byte t or f
func MakeBoolean(b bool) Value {
	if b {
		return MakeString(TypeBoolean, "t")
	}
	return MakeString(TypeBoolean, "f")
}

// MakeArray creates a standard RESP array containing the provided elements
func MakeArray(vals []Value) Value { return MakeAggregate(TypeArray, vals) }

// MakeMap creates a RESP3 map from an even, key-value interleaved slice
func MakeMap(vals []Value) Value { return MakeAggregate(TypeMap, vals) }

// MakeCommand pre-encodes a fixed command as an Array of one BlobString.
// The name must be ASCII.
func MakeCommand(cmd string) Value {
	for i := 0; i < len(cmd); i++ {
		if cmd[i] >= 0x80 {
			panic("resp: command names must be ASCII")
		}
	}
	return MakeAggregate(TypeArray, []Value{MakeBlobString(cmd)})
}

// Type returns the value's RESP type. For a wrapped unit aggregate this is
// the aggregate's type, as it appears on the wire.
func (v Value) Type() Type { return v.state.typ }

// IsNull reports whether the value is a semantic null.
func (v Value) IsNull() bool {
	return v.state.storage == storageNull || v.state.typ == TypeNull
}

// IsEmpty reports whether the value is a zero-length payload or aggregate.
func (v Value) IsEmpty() bool { return v.state.storage == storageEmpty }

// SubItems returns the aggregate's children. A wrapped unit aggregate is
// unwrapped lazily into a fresh single-element slice; leaves return nil.
func (v Value) SubItems() []Value {
	switch {
	case v.state.canUnwrap():
		return []Value{{state: v.state.unwrap()}}
	case v.state.storage == storageValueSlice:
		start := v.state.start()
		return v.items[start : start+v.state.length()]
	default:
		return nil
	}
}

// appendPayload appends the value's leaf payload in its textual form:
// bytes verbatim, scalars rendered to ASCII.
func (v Value) appendPayload(dst []byte) []byte {
	s := v.state
	if s.canUnwrap() {
		s = s.unwrap()
	}
	switch s.storage {
	case storageNull, storageEmpty, storageUninitialized:
		return dst
	case storageInlinedBytes:
		return append(dst, s.inlineBytes()...)
	case storageInlinedInt64:
		return strconv.AppendInt(dst, s.int64v(), 10)
	case storageInlinedUint32:
		return strconv.AppendUint(dst, uint64(s.uint32v()), 10)
	case storageInlinedDouble:
		return appendDouble(dst, s.float64v())
	case storageByteSlice:
		return append(dst, v.buf[s.start():s.start()+s.length()]...)
	case storageStringSegment:
		return append(dst, v.str[s.start():s.start()+s.length()]...)
	case storageByteSequence:
		return appendRange(dst, v.first, int(s.start()), v.last, int(s.end()))
	}
	panic(fmt.Sprintf("resp: %v: %v", ErrStorageKindNotImplemented, s.storage))
}

// appendDouble renders f in round-trippable form with the RESP infinity
// sentinels; NaN renders as nan.
func appendDouble(dst []byte, f float64) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(dst, "+inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	case math.IsNaN(f):
		return append(dst, "nan"...)
	default:
		return strconv.AppendFloat(dst, f, 'g', 17, 64)
	}
}

// String renders the value as text on a best-effort basis: leaf payloads
// pass through, aggregates render their children in brackets, nulls render
// as (nil).
func (v Value) String() string {
	if v.IsNull() {
		return "(nil)"
	}
	if v.Type().IsAggregate() {
		items := v.SubItems()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return string(v.appendPayload(nil))
}

// Err surfaces SimpleError and BlobError values as a Go error, nil for
// every other type.
func (v Value) Err() error {
	if v.Type() == TypeSimpleError || v.Type() == TypeBlobError {
		return &Error{Message: string(v.appendPayload(nil))}
	}
	return nil
}

// Equal reports structural equality: same wire type, and equal rendered
// payloads or pairwise-equal children. Storage layout is ignored, so an
// inlined scalar equals its parsed byte-borrowing twin.
func (v Value) Equal(o Value) bool {
	if v.state.typ != o.state.typ {
		return false
	}
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	if v.Type().IsAggregate() {
		a, b := v.SubItems(), o.SubItems()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	}
	var sa, sb [32]byte
	return string(v.appendPayload(sa[:0])) == string(o.appendPayload(sb[:0]))
}

// Lease is a pooled child-value buffer for assembling aggregates without
// allocating per request. Aliasing the slice after Release is a caller bug.
type Lease struct {
	vals []Value
}

var leasePool = sync.Pool{
	New: func() any { return &Lease{} },
}

// NewLease acquires a pooled buffer of n zero values.
func NewLease(n int) *Lease {
	if n < 0 {
		panic("resp: negative lease length")
	}
	l := leasePool.Get().(*Lease)
	if cap(l.vals) < n {
		l.vals = make([]Value, n)
	} else {
		l.vals = l.vals[:n]
		for i := range l.vals {
			l.vals[i] = Value{}
		}
	}
	return l
}

// Values returns the leased slice.
func (l *Lease) Values() []Value { return l.vals }

// Release returns the buffer to the pool.
func (l *Lease) Release() {
	l.vals = l.vals[:0]
	leasePool.Put(l)
}
