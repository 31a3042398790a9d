package resp_test

import (
	"math"
	"testing"

	"github.com/eternalApril/starlight/internal/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reencode parses input, asserting the whole frame was consumed, then
// writes the value back at RESP3 and asserts the bytes equal the input.
func reencode(t *testing.T, input string) {
	t.Helper()
	v, consumed, ok, err := resp.TryParse(resp.BytesSequence([]byte(input)))
	require.NoError(t, err)
	require.True(t, ok, "input must parse")
	require.Equal(t, int64(len(input)), consumed)

	sink := resp.NewSliceSink(64)
	_, err = v.Write(sink, resp.RESP3)
	require.NoError(t, err)
	assert.Equal(t, input, string(sink.Bytes()))
}

func TestRoundTrip_CanonicalFrames(t *testing.T) {
	frames := []string{
		"+OK\r\n",
		"-ERR oops\r\n",
		":42\r\n",
		":-9223372036854775808\r\n",
		",1.5\r\n",
		",+inf\r\n",
		",nan\r\n",
		"#t\r\n",
		"#f\r\n",
		"_\r\n",
		"(3492890328409238509324850943850943825024385\r\n",
		"$0\r\n\r\n",
		"$4\r\nPING\r\n",
		"$13\r\nthirteen.byte\r\n",
		"!5\r\noops!\r\n",
		"=9\r\ntxt:hello\r\n",
		"*0\r\n",
		"*1\r\n$4\r\nPING\r\n",
		"*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n",
		"%2\r\n$1\r\na\r\n:1\r\n$1\r\nb\r\n:2\r\n",
		"~2\r\n:1\r\n:2\r\n",
		">2\r\n+message\r\n$4\r\nchan\r\n",
		"|1\r\n$3\r\nttl\r\n:3600\r\n",
		"*2\r\n:1\r\n*1\r\n+inner\r\n",
	}
	for _, frame := range frames {
		t.Run(frame, func(t *testing.T) {
			reencode(t, frame)
		})
	}
}

// law 1: parse(write(v, RESP3)) equals v for factory-built values.
func TestRoundTrip_FactoryValues(t *testing.T) {
	values := []resp.Value{
		resp.MakeSimpleString("PONG"),
		resp.MakeError("ERR wrong"),
		resp.MakeNumber(0),
		resp.MakeNumber(math.MaxInt64),
		resp.MakeNumber(math.MinInt64),
		resp.MakeUint(resp.TypeNumber, math.MaxUint32),
		resp.MakeDouble(resp.TypeDouble, 0),
		resp.MakeDouble(resp.TypeDouble, 1.5),
		resp.MakeDouble(resp.TypeDouble, math.Inf(1)),
		resp.MakeDouble(resp.TypeDouble, math.Inf(-1)),
		resp.MakeDouble(resp.TypeDouble, 1e308),
		resp.MakeDouble(resp.TypeDouble, 5e-324),
		resp.MakeBoolean(true),
		resp.MakeBlobString(""),
		resp.MakeBlobString("x"),
		resp.MakeBlobString("elevenchars"),
		resp.MakeBlobString("exactlytwelv"),
		resp.MakeBlobString("thirteen.byte"),
		resp.MakeString(resp.TypeVerbatimString, "txt:hello"),
		resp.MakeCommand("PING"),
		resp.MakeArray(nil),
		resp.MakeArray([]resp.Value{resp.MakeBlobString("GET"), resp.MakeBlobString("key")}),
		resp.MakeMap([]resp.Value{resp.MakeBlobString("k"), resp.MakeNumber(1)}),
		resp.Null,
	}

	for _, v := range values {
		sink := resp.NewSliceSink(64)
		n, err := v.Write(sink, resp.RESP3)
		require.NoError(t, err)

		parsed, consumed, ok, err := resp.TryParse(resp.BytesSequence(sink.Bytes()))
		require.NoError(t, err)
		require.True(t, ok, "wrote %q", sink.Bytes())
		assert.Equal(t, n, consumed)
		assert.True(t, parsed.Equal(v), "parse(write(%v)) = %v", v, parsed)
	}
}

// at RESP2 the parsed type may be the downgraded tag, but the payload and
// shape survive.
func TestRoundTrip_RESP2Downgrade(t *testing.T) {
	tests := []struct {
		name     string
		input    resp.Value
		wantType resp.Type
		wantStr  string
	}{
		{"Double becomes simple string", resp.MakeDouble(resp.TypeDouble, 1.5), resp.TypeSimpleString, "1.5"},
		{"Boolean becomes simple string", resp.MakeBoolean(true), resp.TypeSimpleString, "t"},
		{"Verbatim becomes blob", resp.MakeString(resp.TypeVerbatimString, "txt:hello"), resp.TypeBlobString, "txt:hello"},
		{"Set becomes array", resp.MakeAggregate(resp.TypeSet, []resp.Value{resp.MakeNumber(1)}), resp.TypeArray, "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := resp.NewSliceSink(64)
			_, err := tt.input.Write(sink, resp.RESP2)
			require.NoError(t, err)

			parsed, _, ok, err := resp.TryParse(resp.BytesSequence(sink.Bytes()))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, parsed.Type())
			assert.Equal(t, tt.wantStr, parsed.String())
		})
	}
}

func TestPreserve_Idempotent(t *testing.T) {
	input := []byte("*2\r\n+a borrowed simple string payload\r\n$20\r\nowned.blob.payload..\r\n")
	v, _, ok, err := resp.TryParse(resp.BytesSequence(input))
	require.NoError(t, err)
	require.True(t, ok)

	once := v.Preserve()
	twice := once.Preserve()
	assert.True(t, once.Equal(v))
	assert.True(t, twice.Equal(once))
}

func TestPreserve_DetachesFromBuffer(t *testing.T) {
	input := []byte("+a borrowed simple string payload\r\n")
	v, _, ok, err := resp.TryParse(resp.BytesSequence(input))
	require.NoError(t, err)
	require.True(t, ok)

	preserved := v.Preserve()
	for i := range input {
		input[i] = 'X'
	}

	assert.Equal(t, "a borrowed simple string payload", preserved.String())
	// the unpreserved value saw the overwrite, proving it borrowed
	assert.NotEqual(t, "a borrowed simple string payload", v.String())
}

func TestPreserve_NoOwnersUnchanged(t *testing.T) {
	for _, v := range []resp.Value{
		resp.Null,
		resp.MakeNumber(7),
		resp.MakeBlobString("tiny"),
		resp.MakeBlobString(""),
	} {
		assert.True(t, v.Preserve().Equal(v))
	}
}
