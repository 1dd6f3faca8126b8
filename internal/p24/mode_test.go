package p24

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		e := NewEndpoints(ModeProduction)

		u, err := e.ServiceURL()
		require.NoError(t, err)
		assert.Equal(t, "https://secure.przelewy24.pl/trnDirect", u)

		u, err = e.VerificationURL()
		require.NoError(t, err)
		assert.Equal(t, "https://secure.przelewy24.pl/trnVerify", u)
	})

	t.Run("Test", func(t *testing.T) {
		e := NewEndpoints(ModeTest)

		u, err := e.ServiceURL()
		require.NoError(t, err)
		assert.Equal(t, "https://sandbox.przelewy24.pl/trnDirect", u)

		u, err = e.VerificationURL()
		require.NoError(t, err)
		assert.Equal(t, "https://sandbox.przelewy24.pl/trnVerify", u)
	})

	t.Run("Overrides", func(t *testing.T) {
		e := Endpoints{Mode: ModeTest, TestVerificationURL: "http://127.0.0.1:9999/verify"}

		u, err := e.VerificationURL()
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9999/verify", u)
	})

	t.Run("InvalidMode", func(t *testing.T) {
		e := NewEndpoints("sandbox")

		_, err := e.ServiceURL()
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, Mode("sandbox"), cfgErr.Mode)
		assert.Contains(t, err.Error(), "invalid value")

		_, err = e.VerificationURL()
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "This query has been already processed", DescribeError("err03"))
	assert.Equal(t, "This query has been already processed", DescribeError("03"))
	assert.Equal(t, "Incorrect transaction value", DescribeError("ERR10"))
	assert.Equal(t, "Transaction request terminated by user", DescribeError("161"))
	assert.Equal(t, "unknown error", DescribeError("999"))
}
