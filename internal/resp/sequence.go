package resp

// Segment is one chunk of a discontiguous byte sequence. Segments form a
// singly linked chain; runningIndex is the absolute offset of the first
// payload byte within the whole sequence.
type Segment struct {
	payload      []byte
	next         *Segment
	runningIndex int64
}

// Payload returns the bytes held by this segment.
func (s *Segment) Payload() []byte { return s.payload }

// Next returns the following segment, or nil at the end of the chain.
func (s *Segment) Next() *Segment { return s.next }

// Sequence is a read-only view over a chain of segments. firstOff is the
// start offset within first, lastOff the exclusive end offset within last.
type Sequence struct {
	first    *Segment
	last     *Segment
	firstOff int
	lastOff  int
}

// NewSequence chains the given chunks into a sequence. Empty chunks are
// kept in the chain so callers can model arbitrary network reads.
func NewSequence(chunks ...[]byte) Sequence {
	var first, last *Segment
	var index int64
	for _, c := range chunks {
		seg := &Segment{payload: c, runningIndex: index}
		index += int64(len(c))
		if first == nil {
			first = seg
		} else {
			last.next = seg
		}
		last = seg
	}
	if first == nil {
		return Sequence{}
	}
	return Sequence{first: first, last: last, firstOff: 0, lastOff: len(last.payload)}
}

// BytesSequence wraps a single contiguous buffer.
func BytesSequence(b []byte) Sequence {
	return NewSequence(b)
}

// Len returns the total number of bytes in the sequence.
func (s Sequence) Len() int64 {
	if s.first == nil {
		return 0
	}
	if s.first == s.last {
		return int64(s.lastOff - s.firstOff)
	}
	return s.last.runningIndex + int64(s.lastOff) - s.first.runningIndex - int64(s.firstOff)
}

// IsEmpty reports whether the sequence holds no bytes.
func (s Sequence) IsEmpty() bool { return s.Len() == 0 }

// AppendTo appends the sequence's bytes to dst.
func (s Sequence) AppendTo(dst []byte) []byte {
	if s.first == nil {
		return dst
	}
	return appendRange(dst, s.first, s.firstOff, s.last, s.lastOff)
}

// appendRange appends the bytes between (first, firstOff) inclusive and
// (last, lastOff) exclusive.
func appendRange(dst []byte, first *Segment, firstOff int, last *Segment, lastOff int) []byte {
	if first == last {
		return append(dst, first.payload[firstOff:lastOff]...)
	}
	dst = append(dst, first.payload[firstOff:]...)
	for seg := first.next; seg != last; seg = seg.next {
		dst = append(dst, seg.payload...)
	}
	return append(dst, last.payload[:lastOff]...)
}

func rangeLen(first *Segment, firstOff int, last *Segment, lastOff int) int64 {
	if first == last {
		return int64(lastOff - firstOff)
	}
	return last.runningIndex + int64(lastOff) - first.runningIndex - int64(firstOff)
}

// cursor walks a sequence byte by byte. The parser snapshots it by value on
// entry to every frame so an incomplete read leaves the caller's position
// untouched.
type cursor struct {
	seg      *Segment
	off      int
	end      *Segment
	endOff   int
	consumed int64
}

func newCursor(s Sequence) cursor {
	return cursor{seg: s.first, off: s.firstOff, end: s.last, endOff: s.lastOff}
}

// normalize moves the cursor off segment tails so seg/off always denote a
// readable byte when one remains.
func (c *cursor) normalize() {
	for c.seg != nil && c.seg != c.end && c.off == len(c.seg.payload) {
		c.seg = c.seg.next
		c.off = 0
	}
}

func (c *cursor) remaining() int64 {
	if c.seg == nil {
		return 0
	}
	return rangeLen(c.seg, c.off, c.end, c.endOff)
}

func (c *cursor) tryReadByte() (byte, bool) {
	c.normalize()
	if c.seg == nil || (c.seg == c.end && c.off >= c.endOff) {
		return 0, false
	}
	b := c.seg.payload[c.off]
	c.off++
	c.consumed++
	return b, true
}

// copyOut copies len(dst) bytes into dst and advances. The caller must have
// checked availability.
func (c *cursor) copyOut(dst []byte) {
	n := len(dst)
	c.consumed += int64(n)
	for n > 0 {
		c.normalize()
		avail := len(c.seg.payload) - c.off
		if c.seg == c.end {
			avail = c.endOff - c.off
		}
		take := avail
		if take > n {
			take = n
		}
		copy(dst[len(dst)-n:], c.seg.payload[c.off:c.off+take])
		c.off += take
		n -= take
	}
}

// lineInfo describes one CRLF-terminated line relative to a cursor.
type lineInfo struct {
	first    *Segment
	firstOff int
	last     *Segment
	lastOff  int // exclusive, position of the \r
	length   int64
}

// tryReadLine locates the next \r\n. It returns ok=false when the sequence
// ends before the terminator, and ErrExpectedNewLine when \r is followed by
// anything but \n. On success the cursor sits just past the \n.
func (c *cursor) tryReadLine() (lineInfo, bool, error) {
	c.normalize()
	info := lineInfo{first: c.seg, firstOff: c.off}
	if c.seg == nil {
		return lineInfo{}, false, nil
	}
	probe := *c
	for {
		b, ok := probe.tryReadByte()
		if !ok {
			return lineInfo{}, false, nil
		}
		if b != '\r' {
			continue
		}
		// tryReadByte normalizes before reading, so the \r sits at off-1
		// of the probe's current segment
		rSeg, rOff := probe.seg, probe.off-1
		nl, ok := probe.tryReadByte()
		if !ok {
			return lineInfo{}, false, nil
		}
		if nl != '\n' {
			return lineInfo{}, false, errExpectedNewLine(nl)
		}
		info.last = rSeg
		info.lastOff = rOff
		info.length = rangeLen(info.first, info.firstOff, info.last, info.lastOff)
		*c = probe
		return info, true, nil
	}
}
