package shared

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVWriterPrependsBOMAndQuotes(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"Address", "Note"}))
	require.NoError(t, w.Write([]string{"A3, Tower 1", `say "hi"`}))
	w.Flush()
	require.NoError(t, w.Error())

	out := buf.Bytes()
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, out[:3])
	require.Equal(t, "Address,Note\r\n\"A3, Tower 1\",\"say \"\"hi\"\"\"\r\n", string(out[3:]))
	require.Equal(t, out[3:], StripBOM(out))
	require.Equal(t, []byte("abc"), StripBOM([]byte("abc")))
}
