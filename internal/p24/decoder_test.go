package p24

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatin2Decoder(t *testing.T) {
	// 0xB3 is "ł", 0xB1 is "ą" and 0xA3 is "Ł" in ISO-8859-2.
	raw := []byte("error=0&errorMessage=b\xb3\xb1d \xa3")

	out, err := Latin2Decoder{}.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "error=0&errorMessage=błąd Ł", out)
}

func TestUTF8Decoder(t *testing.T) {
	out, err := UTF8Decoder{}.Decode([]byte("error=0"))
	require.NoError(t, err)
	assert.Equal(t, "error=0", out)
}
