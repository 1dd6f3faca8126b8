package p24

import (
	"fmt"
	"net/url"
	"strings"
)

// Recognizes reports whether posted params look like a P24 notification.
// It must be checked before ParseNotification.
func Recognizes(params url.Values) bool {
	_, hasSession := params[FieldSessionID]
	_, hasAmount := params[FieldAmount]
	return hasSession && hasAmount
}

// Notification is an immutable view over a P24 status post.
//
// The posted p24_sign is exposed as SecurityKey but never checked here:
// authenticity is only established by Acknowledger.Acknowledge.
type Notification struct {
	params map[string]string
}

// ParseNotification parses a form-encoded notification body.
func ParseNotification(raw string) (*Notification, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty notification body", ErrInvalidInput)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return NewNotification(values)
}

func NewNotification(params url.Values) (*Notification, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: empty notification", ErrInvalidInput)
	}

	n := &Notification{params: make(map[string]string, len(params))}
	for k, v := range params {
		if len(v) > 0 {
			n.params[k] = v[0]
		} else {
			n.params[k] = ""
		}
	}
	return n, nil
}

func (n *Notification) Param(key string) string { return n.params[key] }

// Params returns a copy of every posted field.
func (n *Notification) Params() map[string]string {
	out := make(map[string]string, len(n.params))
	for k, v := range n.params {
		out[k] = v
	}
	return out
}

// Complete is false whenever the gateway posted a non-empty error field.
func (n *Notification) Complete() bool {
	return strings.TrimSpace(n.params[FieldError]) == ""
}

func (n *Notification) Account() string       { return n.params[FieldMerchantID] }
func (n *Notification) PosID() string         { return n.params[FieldPosID] }
func (n *Notification) Amount() string        { return n.params[FieldAmount] }
func (n *Notification) ItemID() string        { return n.params[FieldSessionID] }
func (n *Notification) TransactionID() string { return n.params[FieldOrderID] }
func (n *Notification) Currency() string      { return n.params[FieldCurrency] }
func (n *Notification) Method() string        { return n.params[FieldMethod] }
func (n *Notification) Statement() string     { return n.params[FieldStatement] }
func (n *Notification) SecurityKey() string   { return n.params[FieldSign] }
func (n *Notification) ErrorCode() string     { return n.params[FieldError] }
