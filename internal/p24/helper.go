package p24

import (
	"fmt"
	"strings"

	"p24-gateway/internal/logger"

	"go.uber.org/zap"
)

// HelperOptions carries the per-checkout values and the merchant secret.
type HelperOptions struct {
	CRCKey      string
	Amount      string
	Currency    string
	Description string
	NotifyURL   string
	ReturnURL   string
	Endpoints   Endpoints
}

// Helper collects the fields of one payment-initiation form. It is not safe
// for concurrent use; build one per checkout.
type Helper struct {
	fields    map[string]string
	crcKey    string
	endpoints Endpoints
}

// Form is what the browser submits to the gateway.
type Form struct {
	Action string            `json:"action"`
	Fields map[string]string `json:"fields"`
}

func NewHelper(orderID, account string, opts HelperOptions) *Helper {
	h := &Helper{
		fields:    make(map[string]string),
		crcKey:    opts.CRCKey,
		endpoints: opts.Endpoints,
	}

	if opts.CRCKey == "" {
		logger.L().Warn("P24 CRC key is empty, signatures will not be accepted by the gateway",
			zap.String("session_id", orderID),
		)
	}

	h.fields[FieldAPIVersion] = APIVersion
	h.fields[FieldSessionID] = orderID
	h.mustSet(Account, account)

	for logical, value := range map[string]string{
		Amount:      opts.Amount,
		Currency:    opts.Currency,
		Description: opts.Description,
		NotifyURL:   opts.NotifyURL,
		ReturnURL:   opts.ReturnURL,
	} {
		if value != "" {
			h.mustSet(logical, value)
		}
	}

	return h
}

// Set assigns a logical field (see fieldMappings) to every wire field it maps to.
func (h *Helper) Set(logical, value string) error {
	names, ok := fieldMappings[logical]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, logical)
	}
	for _, name := range names {
		h.fields[name] = value
	}
	return nil
}

func (h *Helper) mustSet(logical, value string) {
	if err := h.Set(logical, value); err != nil {
		panic(err)
	}
}

func (h *Helper) Customer(firstName, lastName, email string) {
	h.fields[FieldClient] = firstName + " " + lastName
	h.fields[FieldEmail] = email
}

func (h *Helper) Field(name string) string {
	return h.fields[name]
}

func (h *Helper) HasCRCKey() bool {
	return h.crcKey != ""
}

// Signature signs the fields exactly as they are currently stored.
func (h *Helper) Signature() string {
	return signFields(h.fields, h.crcKey)
}

// FormFields returns the finished field set: amount in minor units, currency
// upper-cased and p24_sign computed last. The helper itself is left untouched.
func (h *Helper) FormFields() (map[string]string, error) {
	out := make(map[string]string, len(h.fields)+1)
	for k, v := range h.fields {
		out[k] = v
	}

	amount, err := MinorUnits(out[FieldAmount])
	if err != nil {
		return nil, fmt.Errorf("normalize amount: %w", err)
	}
	out[FieldAmount] = formatMinorUnits(amount)

	if currency, ok := out[FieldCurrency]; ok {
		out[FieldCurrency] = strings.ToUpper(currency)
	}

	out[FieldSign] = signFields(out, h.crcKey)
	return out, nil
}

// Form resolves the gateway URL for the configured mode and attaches the fields.
func (h *Helper) Form() (*Form, error) {
	action, err := h.endpoints.ServiceURL()
	if err != nil {
		return nil, err
	}

	fields, err := h.FormFields()
	if err != nil {
		return nil, err
	}

	return &Form{Action: action, Fields: fields}, nil
}

func signFields(fields map[string]string, crcKey string) string {
	return outboundSignature(
		fields[FieldSessionID],
		fields[FieldMerchantID],
		fields[FieldAmount],
		fields[FieldCurrency],
		crcKey,
	)
}
