package resp

// EqualsASCIIIgnoreCase reports whether two values of the same type carry
// payloads equal under ASCII case folding. Two inline values compare their
// states directly with OR-0x20 masking over the payload bytes; other pairs
// materialize their payloads first. The result is unspecified when either
// payload contains non-ASCII bytes.
func (v Value) EqualsASCIIIgnoreCase(o Value) bool {
	a, b := v.state, o.state
	if a.storage == storageInlinedBytes && b.storage == storageInlinedBytes {
		if a.typ != b.typ || a.subType != b.subType || a.payloadLen != b.payloadLen {
			return false
		}
		for i := byte(0); i < a.payloadLen; i++ {
			if a.data[i]|0x20 != b.data[i]|0x20 {
				return false
			}
		}
		return true
	}
	if a.typ != b.typ {
		return false
	}
	var sa, sb [32]byte
	pa := v.appendPayload(sa[:0])
	pb := o.appendPayload(sb[:0])
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i]|0x20 != pb[i]|0x20 {
			return false
		}
	}
	return true
}
