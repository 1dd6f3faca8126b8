package p24

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"p24-gateway/internal/logger"

	"go.uber.org/zap"
)

const DefaultUserAgent = "p24-gateway/1.0 (+https://www.przelewy24.pl)"

// State is a step of the acknowledgment state machine.
type State int

const (
	StateReceived State = iota
	StateVerifying
	StateConfirmed
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateVerifying:
		return "verifying"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateRejected || s == StateFailed
}

// VerificationRequest is the trnVerify payload derived from a notification.
type VerificationRequest struct {
	MerchantID string
	PosID      string
	SessionID  string
	Amount     string
	Currency   string
	OrderID    string
	Sign       string
}

// Values drops blank fields, as the gateway expects.
func (r VerificationRequest) Values() url.Values {
	v := url.Values{}
	add := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			v.Set(key, value)
		}
	}
	add(FieldMerchantID, r.MerchantID)
	add(FieldPosID, r.PosID)
	add(FieldSessionID, r.SessionID)
	add(FieldAmount, r.Amount)
	add(FieldCurrency, r.Currency)
	add(FieldOrderID, r.OrderID)
	add(FieldSign, r.Sign)
	return v
}

// Encode renders key-sorted, query-escaped key=value pairs joined by '&'.
func (r VerificationRequest) Encode() string {
	return r.Values().Encode()
}

// VerificationResponse holds the decoded key/value pairs of a trnVerify reply.
type VerificationResponse map[string]string

// ErrorCode returns the trimmed error field. ok is false when the field is
// missing or blank, i.e. the gateway gave no verdict.
func (r VerificationResponse) ErrorCode() (string, bool) {
	code := strings.TrimSpace(r[FieldError])
	return code, code != ""
}

func (r VerificationResponse) Message() string {
	return r[FieldErrorMsg]
}

// Result is the outcome of one acknowledgment attempt.
type Result struct {
	State    State
	Trail    []State
	Request  VerificationRequest
	Response VerificationResponse
	err      error
}

func (r *Result) transition(to State) {
	r.State = to
	r.Trail = append(r.Trail, to)
}

// Err is nil when confirmed, a *GatewayRejection when rejected and a
// *TransportFailure when the call failed.
func (r *Result) Err() error { return r.err }

func (r *Result) Confirmed() bool { return r.State == StateConfirmed }

// Rejection returns the gateway rejection, if any.
func (r *Result) Rejection() (*GatewayRejection, bool) {
	var rej *GatewayRejection
	ok := errors.As(r.err, &rej)
	return rej, ok
}

// Acknowledger confirms notifications with the gateway. It holds no mutable
// state and can be shared between goroutines.
type Acknowledger struct {
	endpoints  Endpoints
	crcKey     string
	httpClient *http.Client
	decoder    TextDecoder
	userAgent  string
}

type AckOption func(*Acknowledger)

// WithHTTPClient replaces the transport. Timeouts belong on the request context.
func WithHTTPClient(c *http.Client) AckOption {
	return func(a *Acknowledger) { a.httpClient = c }
}

func WithDecoder(d TextDecoder) AckOption {
	return func(a *Acknowledger) { a.decoder = d }
}

func WithUserAgent(ua string) AckOption {
	return func(a *Acknowledger) { a.userAgent = ua }
}

func NewAcknowledger(endpoints Endpoints, crcKey string, opts ...AckOption) *Acknowledger {
	a := &Acknowledger{
		endpoints:  endpoints,
		crcKey:     crcKey,
		httpClient: &http.Client{},
		decoder:    Latin2Decoder{},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(a)
	}

	if crcKey == "" {
		logger.L().Warn("P24 CRC key is empty, verification requests will be rejected")
	}
	return a
}

// BuildRequest derives the signed verification request. The signature uses
// the amount re-run through MinorUnits, the body carries the posted amount.
func (a *Acknowledger) BuildRequest(n *Notification) (VerificationRequest, error) {
	amount, err := MinorUnits(n.Amount())
	if err != nil {
		return VerificationRequest{}, err
	}

	req := VerificationRequest{
		MerchantID: n.Account(),
		PosID:      n.PosID(),
		SessionID:  n.ItemID(),
		Amount:     n.Amount(),
		Currency:   n.Currency(),
		OrderID:    n.TransactionID(),
	}
	req.Sign = verificationSignature(req.SessionID, req.OrderID, amount, req.Currency, a.crcKey)
	return req, nil
}

// Acknowledge runs one verification round trip. The returned error is reserved
// for caller mistakes (nil notification, bad amount, invalid mode); gateway
// rejections and transport failures are reported through Result.
func (a *Acknowledger) Acknowledge(ctx context.Context, n *Notification) (*Result, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil notification", ErrInvalidInput)
	}

	verifyURL, err := a.endpoints.VerificationURL()
	if err != nil {
		return nil, err
	}

	req, err := a.BuildRequest(n)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("session_id", req.SessionID),
		zap.String("order_id", req.OrderID),
	)

	res := &Result{State: StateReceived, Trail: []State{StateReceived}, Request: req}
	res.transition(StateVerifying)

	log.Info("Sending verification request to P24")

	body, err := a.post(ctx, verifyURL, req.Encode())
	if err != nil {
		log.Error("P24 verification call failed", zap.Error(err))
		res.err = &TransportFailure{Err: err}
		res.transition(StateFailed)
		return res, nil
	}

	resp, err := a.parseResponse(body)
	if err != nil {
		log.Error("Failed decoding P24 verification response", zap.Error(err))
		res.err = &TransportFailure{Err: err}
		res.transition(StateFailed)
		return res, nil
	}
	res.Response = resp

	code, ok := resp.ErrorCode()
	switch {
	case !ok:
		log.Error("P24 verification response carries no verdict", zap.ByteString("response", body))
		res.err = &TransportFailure{Err: errors.New("verification response has no error code")}
		res.transition(StateFailed)
	case code == "0":
		log.Info("P24 transaction confirmed")
		res.transition(StateConfirmed)
	default:
		rej := &GatewayRejection{Code: code, Description: DescribeError(code), Message: resp.Message()}
		log.Warn("P24 rejected verification",
			zap.String("code", rej.Code),
			zap.String("description", rej.Description),
		)
		res.err = rej
		res.transition(StateRejected)
	}

	return res, nil
}

func (a *Acknowledger) post(ctx context.Context, target, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read p24 response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("p24 verification returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (a *Acknowledger) parseResponse(raw []byte) (VerificationResponse, error) {
	text, err := a.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}

	out := VerificationResponse{}
	for _, pair := range strings.Split(strings.TrimSpace(text), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}
