package p24

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput  = errors.New("p24: invalid input")
	ErrInvalidAmount = fmt.Errorf("%w: amount", ErrInvalidInput)
	ErrUnknownField  = errors.New("p24: unknown field")
)

// ConfigurationError reports a mode value that is neither test nor production.
type ConfigurationError struct {
	Mode Mode
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("p24: integration mode set to an invalid value: %q", string(e.Mode))
}

// GatewayRejection is returned when trnVerify answers with a non-zero error code.
type GatewayRejection struct {
	Code        string
	Description string
	Message     string
}

func (e *GatewayRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("p24: verification rejected (%s: %s): %s", e.Code, e.Description, e.Message)
	}
	return fmt.Sprintf("p24: verification rejected (%s: %s)", e.Code, e.Description)
}

// TransportFailure means the verification call did not complete.
type TransportFailure struct {
	Err error
}

func (e *TransportFailure) Error() string {
	return "p24: verification transport failure: " + e.Err.Error()
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

var errorCatalog = map[string]string{
	"00":  "Incorrect call",
	"01":  "Authorization answer confirmation was not received",
	"02":  "Authorization answer was not received",
	"03":  "This query has been already processed",
	"04":  "Authorization query incomplete or incorrect",
	"05":  "Store configuration cannot be read",
	"06":  "Saving of authorization query failed",
	"07":  "Another payment is being concluded",
	"08":  "Undetermined store connection status",
	"09":  "Permitted corrections amount has been exceeded",
	"10":  "Incorrect transaction value",
	"49":  "Too high transaction risk factor",
	"51":  "Incorrect reference method",
	"52":  "Incorrect feedback on session information",
	"53":  "Transaction error",
	"54":  "Incorrect transaction value",
	"55":  "Incorrect transaction id",
	"56":  "Incorrect card",
	"57":  "Incompatibility of TEST flag",
	"58":  "Incorrect sequence number",
	"101": "Incorrect call",
	"102": "Allowed transaction time has expired",
	"103": "Incorrect transfer value",
	"104": "Transaction awaits confirmation",
	"105": "Transaction finished after allowed time",
	"106": "Transaction result verification error",
	"161": "Transaction request terminated by user",
	"162": "Transaction request terminated by user",
}

// DescribeError maps a trnVerify error code ("err03" or "03") to its meaning.
func DescribeError(code string) string {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(code)), "err")
	if desc, ok := errorCatalog[key]; ok {
		return desc
	}
	return "unknown error"
}
