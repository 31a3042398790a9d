package resp

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// maxNestingDepth bounds recursive aggregate assembly.
	maxNestingDepth = 32
	// maxLengthLine is the longest accepted length line in bytes.
	maxLengthLine = 20
)

// TryParse decodes one frame from the front of seq.
//
// A complete frame returns ok=true, the decoded value and the number of
// bytes it occupied. A partial frame returns ok=false with a nil error and
// zero consumed bytes. A malformed frame returns a non-nil error; the
// caller should discard the connection or resynchronize.
//
// Line-terminated values borrow from seq's segments wherever the payload
// does not fit inline; blob payloads are always copied. Call Preserve
// before reusing the underlying buffers.
func TryParse(seq Sequence) (v Value, consumed int64, ok bool, err error) {
	c := newCursor(seq)
	v, ok, err = tryParseValue(&c, 0)
	if err != nil || !ok {
		return Value{}, 0, false, err
	}
	return v, c.consumed, true, nil
}

func tryParseValue(c *cursor, depth int) (Value, bool, error) {
	if depth > maxNestingDepth {
		return Value{}, false, fmt.Errorf("%w: aggregate nested deeper than %d", ErrInvalid, maxNestingDepth)
	}
	snap := *c
	prefix, ok := c.tryReadByte()
	if !ok {
		*c = snap
		return Value{}, false, nil
	}
	t := typeTable[prefix]
	if t == TypeUnknown {
		return Value{}, false, fmt.Errorf("%w: prefix %q", ErrTypeNotImplemented, prefix)
	}

	var v Value
	var done bool
	var err error
	switch {
	case t.IsBlob():
		v, done, err = tryParseBlob(c, t)
	case t.IsAggregate():
		v, done, err = tryParseAggregate(c, t, depth)
	default:
		v, done, err = tryParseLineTerminated(c, t)
	}
	if err != nil {
		return Value{}, false, err
	}
	if !done {
		*c = snap
		return Value{}, false, nil
	}
	return v, true, nil
}

func tryParseLineTerminated(c *cursor, t Type) (Value, bool, error) {
	line, ok, err := c.tryReadLine()
	if err != nil || !ok {
		return Value{}, false, err
	}
	return makeParsedLine(t, line), true, nil
}

// makeParsedLine classifies a parsed line into the tightest storage:
// empty, inline copy, a borrow of a single segment, or a segment pair.
func makeParsedLine(t Type, li lineInfo) Value {
	switch {
	case li.length == 0:
		return Value{state: newEmptyState(t)}
	case li.length <= InlineSize:
		var tmp [InlineSize]byte
		b := appendRange(tmp[:0], li.first, li.firstOff, li.last, li.lastOff)
		return Value{state: newInlineState(b, t, TypeUnknown)}
	case li.first == li.last:
		return Value{
			state: newSegmentState(t, storageByteSlice, uint32(li.firstOff), uint32(li.length), TypeUnknown),
			buf:   li.first.payload,
		}
	default:
		return Value{
			state: newSegmentState(t, storageByteSequence, uint32(li.firstOff), uint32(li.lastOff), TypeUnknown),
			first: li.first,
			last:  li.last,
		}
	}
}

// tryReadLength reads a CRLF line and parses it as a signed decimal count.
// -1 is the null sentinel. The line must parse exactly and fit in 20 bytes.
func tryReadLength(c *cursor) (int64, bool, error) {
	line, ok, err := c.tryReadLine()
	if err != nil || !ok {
		return 0, false, err
	}
	if line.length == 0 || line.length > maxLengthLine {
		return 0, false, fmt.Errorf("%w: length line of %d bytes", ErrFormat, line.length)
	}
	var tmp [maxLengthLine]byte
	b := appendRange(tmp[:0], line.first, line.firstOff, line.last, line.lastOff)
	if b[0] == '+' {
		return 0, false, fmt.Errorf("%w: length %q", ErrFormat, b)
	}
	n, perr := strconv.ParseInt(string(b), 10, 64)
	if perr != nil || n < -1 || n > math.MaxUint32 {
		return 0, false, fmt.Errorf("%w: length %q", ErrFormat, b)
	}
	return n, true, nil
}

// requireCRLF consumes the two-byte frame terminator.
func requireCRLF(c *cursor) (bool, error) {
	b, ok := c.tryReadByte()
	if !ok {
		return false, nil
	}
	if b != '\r' {
		return false, errExpectedNewLine(b)
	}
	b, ok = c.tryReadByte()
	if !ok {
		return false, nil
	}
	if b != '\n' {
		return false, errExpectedNewLine(b)
	}
	return true, nil
}

func tryParseBlob(c *cursor, t Type) (Value, bool, error) {
	n, done, err := tryReadLength(c)
	if err != nil || !done {
		return Value{}, false, err
	}
	switch {
	case n == -1:
		// length-only null form, no trailing CRLF
		return Value{state: newNullState(t)}, true, nil
	case n == 0:
		done, err := requireCRLF(c)
		if err != nil || !done {
			return Value{}, false, err
		}
		return Value{state: newEmptyState(t)}, true, nil
	}
	if c.remaining() < n+2 {
		return Value{}, false, nil
	}
	var v Value
	if n <= InlineSize {
		var tmp [InlineSize]byte
		c.copyOut(tmp[:n])
		v = Value{state: newInlineState(tmp[:n], t, TypeUnknown)}
	} else {
		owned := make([]byte, n)
		c.copyOut(owned)
		v = Value{
			state: newSegmentState(t, storageByteSlice, 0, uint32(n), TypeUnknown),
			buf:   owned,
		}
	}
	if done, err := requireCRLF(c); err != nil || !done {
		return Value{}, false, err
	}
	return v, true, nil
}

func tryParseAggregate(c *cursor, t Type, depth int) (Value, bool, error) {
	n, done, err := tryReadLength(c)
	if err != nil || !done {
		return Value{}, false, err
	}
	switch {
	case n == -1:
		return Value{state: newNullState(t)}, true, nil
	case n == 0:
		return Value{state: newEmptyState(t)}, true, nil
	}

	total := n * int64(t.Arity())
	if total == 1 {
		child, done, err := tryParseValue(c, depth+1)
		if err != nil || !done {
			return Value{}, false, err
		}
		if child.state.canWrap() {
			return Value{state: child.state.wrap(t)}, true, nil
		}
		return Value{
			state: newSegmentState(t, storageValueSlice, 0, 1, TypeUnknown),
			items: []Value{child},
		}, true, nil
	}

	// every child frame occupies at least a prefix byte plus CRLF, so a
	// count the input cannot possibly satisfy is just an incomplete read
	if c.remaining() < total*3 {
		return Value{}, false, nil
	}

	items := make([]Value, total)
	for i := range items {
		child, done, err := tryParseValue(c, depth+1)
		if err != nil {
			return Value{}, false, err
		}
		if !done {
			// abandon the partially filled array
			return Value{}, false, nil
		}
		items[i] = child
	}
	return Value{
		state: newSegmentState(t, storageValueSlice, 0, uint32(total), TypeUnknown),
		items: items,
	}, true, nil
}
