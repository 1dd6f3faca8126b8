package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"p24-gateway/internal/config"
	"p24-gateway/internal/metrics"
	"p24-gateway/internal/p24"
	"p24-gateway/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
	payment.Repository
}

func (m *MockRepository) SaveTransaction(ctx context.Context, t *payment.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func testConfig(mode string) *config.Config {
	return &config.Config{
		P24: config.P24Config{
			Mode:       mode,
			MerchantID: "MER123",
			CRCKey:     "secret",
			NotifyURL:  "https://shop.example/p24/notify",
			ReturnURL:  "https://shop.example/thanks",
		},
	}
}

func postCheckout(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/p24/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.CreateHandler(w, req)
	return w
}

func TestHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		stats := &metrics.PaymentStats{}
		h := NewHandler(repo, testConfig("test"), stats)

		repo.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(tx *payment.Transaction) bool {
			return tx.SessionID == "22TEST" &&
				tx.MerchantID == "MER123" &&
				tx.Amount == 2995 &&
				tx.Currency == "PLN" &&
				tx.Status == payment.StatusPending &&
				tx.Sign == "6a23e2188453890bf3a0c36c3bd22798"
		})).Return(nil)

		w := postCheckout(h, `{"order_id":"22TEST","amount":"29.95","currency":"pln","description":"Order 22"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)

		var form p24.Form
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		assert.Equal(t, p24.DefaultTestURL, form.Action)
		assert.Equal(t, "2995", form.Fields[p24.FieldAmount])
		assert.Equal(t, "PLN", form.Fields[p24.FieldCurrency])
		assert.Equal(t, "MER123", form.Fields[p24.FieldPosID])
		assert.Equal(t, "https://shop.example/p24/notify", form.Fields[p24.FieldURLStatus])
		assert.Equal(t, "https://shop.example/thanks", form.Fields[p24.FieldURLReturn])
		assert.Equal(t, "6a23e2188453890bf3a0c36c3bd22798", form.Fields[p24.FieldSign])
		assert.NotContains(t, form.Fields, p24.FieldEmail)
		assert.Equal(t, uint64(1), stats.Checkouts.Load())
	})

	t.Run("Customer_And_Return_Override", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("production"), nil)

		repo.On("SaveTransaction", mock.Anything, mock.Anything).Return(nil)

		w := postCheckout(h, `{"order_id":"ord-7","amount":"10","currency":"EUR","email":"jan@example.com",`+
			`"first_name":"Jan","last_name":"Kowalski","return_url":"https://shop.example/other"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var form p24.Form
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		assert.Equal(t, p24.DefaultProductionURL, form.Action)
		assert.Equal(t, "1000", form.Fields[p24.FieldAmount])
		assert.Equal(t, "Jan Kowalski", form.Fields[p24.FieldClient])
		assert.Equal(t, "jan@example.com", form.Fields[p24.FieldEmail])
		assert.Equal(t, "https://shop.example/other", form.Fields[p24.FieldURLReturn])
	})

	t.Run("Stored_Amount_Matches_Signed_Form", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("test"), nil)

		var stored *payment.Transaction
		repo.On("SaveTransaction", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*payment.Transaction) }).
			Return(nil)

		w := postCheckout(h, `{"order_id":"ord-9","amount":"1.005","currency":"PLN"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var form p24.Form
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		require.NotNil(t, stored)
		assert.Equal(t, "101", form.Fields[p24.FieldAmount])
		assert.Equal(t, int64(101), stored.Amount)
	})

	t.Run("Amount_Too_Large", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("test"), nil)

		w := postCheckout(h, `{"order_id":"ord-10","amount":"92233720368547758.08","currency":"PLN"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Generated_SessionID", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("test"), nil)

		repo.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(tx *payment.Transaction) bool {
			return strings.HasPrefix(tx.SessionID, "P24-")
		})).Return(nil)

		w := postCheckout(h, `{"amount":"1.00","currency":"PLN"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("Validation_Errors", func(t *testing.T) {
		cases := map[string]string{
			"missing amount": `{"order_id":"a","currency":"PLN"}`,
			"bad amount":     `{"order_id":"a","amount":"12,50","currency":"PLN"}`,
			"bad currency":   `{"order_id":"a","amount":"1","currency":"ZL"}`,
			"bad email":      `{"order_id":"a","amount":"1","currency":"PLN","email":"nope"}`,
			"not json":       `amount=1`,
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				repo := new(MockRepository)
				h := NewHandler(repo, testConfig("test"), nil)

				w := postCheckout(h, body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Negative_Amount", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("test"), nil)

		w := postCheckout(h, `{"order_id":"a","amount":"-1","currency":"PLN"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Invalid_Mode", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("staging"), nil)

		w := postCheckout(h, `{"order_id":"a","amount":"1","currency":"PLN"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate_Session", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, testConfig("test"), nil)

		repo.On("SaveTransaction", mock.Anything, mock.Anything).Return(payment.ErrDuplicateSession)

		w := postCheckout(h, `{"order_id":"a","amount":"1","currency":"PLN"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Store_Error", func(t *testing.T) {
		repo := new(MockRepository)
		stats := &metrics.PaymentStats{}
		h := NewHandler(repo, testConfig("test"), stats)

		repo.On("SaveTransaction", mock.Anything, mock.Anything).Return(errors.New("db down"))

		w := postCheckout(h, `{"order_id":"a","amount":"1","currency":"PLN"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, uint64(0), stats.Checkouts.Load())
	})
}
