package p24

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizes(t *testing.T) {
	assert.True(t, Recognizes(url.Values{FieldSessionID: {"s"}, FieldAmount: {"100"}}))
	assert.True(t, Recognizes(url.Values{FieldSessionID: {""}, FieldAmount: {""}}), "presence is enough")
	assert.False(t, Recognizes(url.Values{FieldSessionID: {"s"}}))
	assert.False(t, Recognizes(url.Values{FieldAmount: {"100"}}))
	assert.False(t, Recognizes(url.Values{}))
}

func TestParseNotification(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raw := "p24_merchant_id=1234&p24_pos_id=5678&p24_session_id=sess-1&p24_amount=2995" +
			"&p24_currency=PLN&p24_order_id=9876&p24_method=25&p24_statement=p24-A1-B2&p24_sign=abc"

		n, err := ParseNotification(raw)
		require.NoError(t, err)

		assert.Equal(t, "1234", n.Account())
		assert.Equal(t, "5678", n.PosID())
		assert.Equal(t, "sess-1", n.ItemID())
		assert.Equal(t, "2995", n.Amount())
		assert.Equal(t, "PLN", n.Currency())
		assert.Equal(t, "9876", n.TransactionID())
		assert.Equal(t, "25", n.Method())
		assert.Equal(t, "p24-A1-B2", n.Statement())
		assert.Equal(t, "abc", n.SecurityKey())
		assert.True(t, n.Complete())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		_, err := ParseNotification("  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		_, err := ParseNotification("p24_amount=%zz")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestNewNotification(t *testing.T) {
	t.Run("EmptyParams", func(t *testing.T) {
		_, err := NewNotification(url.Values{})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = NewNotification(nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Immutable", func(t *testing.T) {
		params := url.Values{FieldSessionID: {"sess-1"}, FieldAmount: {"100"}}
		n, err := NewNotification(params)
		require.NoError(t, err)

		params.Set(FieldAmount, "999")
		assert.Equal(t, "100", n.Amount())

		copied := n.Params()
		copied[FieldAmount] = "999"
		assert.Equal(t, "100", n.Amount())
	})
}

func TestNotification_Complete(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   bool
	}{
		{"NoErrorField", url.Values{FieldSessionID: {"s"}}, true},
		{"EmptyErrorField", url.Values{FieldSessionID: {"s"}, FieldError: {""}}, true},
		{"BlankErrorField", url.Values{FieldSessionID: {"s"}, FieldError: {"  "}}, true},
		{"ErrorCode", url.Values{FieldSessionID: {"s"}, FieldError: {"err03"}}, false},
		{"ZeroIsStillAnErrorValue", url.Values{FieldSessionID: {"s"}, FieldError: {"0"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNotification(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Complete())
		})
	}
}

// The posted p24_sign is never compared locally: a forged value still parses
// and is only caught by the acknowledgment round trip.
func TestNotification_SignatureNotCheckedLocally(t *testing.T) {
	n, err := ParseNotification("p24_session_id=sess-1&p24_amount=2995&p24_sign=forged")
	require.NoError(t, err)

	assert.Equal(t, "forged", n.SecurityKey())
	assert.True(t, n.Complete())
}
