package p24

// Mode selects which gateway environment the adapter talks to.
type Mode string

const (
	ModeTest       Mode = "test"
	ModeProduction Mode = "production"
)

const (
	DefaultTestURL                   = "https://sandbox.przelewy24.pl/trnDirect"
	DefaultProductionURL             = "https://secure.przelewy24.pl/trnDirect"
	DefaultTestVerificationURL       = "https://sandbox.przelewy24.pl/trnVerify"
	DefaultProductionVerificationURL = "https://secure.przelewy24.pl/trnVerify"
)

// Endpoints is the gateway environment injected into the helper and the
// acknowledger. Zero-value URLs fall back to the public P24 addresses.
type Endpoints struct {
	Mode                      Mode
	TestURL                   string
	ProductionURL             string
	TestVerificationURL       string
	ProductionVerificationURL string
}

func NewEndpoints(mode Mode) Endpoints {
	return Endpoints{Mode: mode}
}

// ServiceURL is the payment-initiation address the checkout form posts to.
func (e Endpoints) ServiceURL() (string, error) {
	switch e.Mode {
	case ModeProduction:
		return orDefault(e.ProductionURL, DefaultProductionURL), nil
	case ModeTest:
		return orDefault(e.TestURL, DefaultTestURL), nil
	default:
		return "", &ConfigurationError{Mode: e.Mode}
	}
}

// VerificationURL is the trnVerify address used during acknowledgment.
func (e Endpoints) VerificationURL() (string, error) {
	switch e.Mode {
	case ModeProduction:
		return orDefault(e.ProductionVerificationURL, DefaultProductionVerificationURL), nil
	case ModeTest:
		return orDefault(e.TestVerificationURL, DefaultTestVerificationURL), nil
	default:
		return "", &ConfigurationError{Mode: e.Mode}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
