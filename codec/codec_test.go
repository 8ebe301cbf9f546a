package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		got, ok := ByName(c.Name())
		require.True(t, ok, c.Name())
		assert.Equal(t, c.Name(), got.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Rows int64  `json:"rows"`
	}

	in := payload{Name: "ts", Rows: 42}

	stdlibBytes := MustMarshal(JSON{}, in)
	gojsonBytes := MustMarshal(GoJSON{}, in)

	// Both codecs speak plain JSON, either decodes the other's output.
	var a, b payload
	require.NoError(t, JSON{}.Unmarshal(gojsonBytes, &a))
	require.NoError(t, GoJSON{}.Unmarshal(stdlibBytes, &b))
	assert.Equal(t, in, a)
	assert.Equal(t, in, b)
}
