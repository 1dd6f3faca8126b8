package p24

import "strconv"

const APIVersion = "3.2"

// Wire field names.
const (
	FieldAPIVersion  = "p24_api_version"
	FieldSessionID   = "p24_session_id"
	FieldMerchantID  = "p24_merchant_id"
	FieldPosID       = "p24_pos_id"
	FieldAmount      = "p24_amount"
	FieldCurrency    = "p24_currency"
	FieldDescription = "p24_description"
	FieldClient      = "p24_client"
	FieldEmail       = "p24_email"
	FieldURLStatus   = "p24_url_status"
	FieldURLReturn   = "p24_url_return"
	FieldSign        = "p24_sign"
	FieldOrderID     = "p24_order_id"
	FieldMethod      = "p24_method"
	FieldStatement   = "p24_statement"
	FieldError       = "error"
	FieldErrorMsg    = "errorMessage"
)

// Logical names accepted by Helper.Set.
const (
	Account     = "account"
	Amount      = "amount"
	Currency    = "currency"
	Description = "description"
	NotifyURL   = "notify_url"
	ReturnURL   = "return_url"
)

// fieldMappings maps one logical field onto the wire fields it fills.
var fieldMappings = map[string][]string{
	Account:     {FieldMerchantID, FieldPosID},
	Amount:      {FieldAmount},
	Currency:    {FieldCurrency},
	Description: {FieldDescription},
	NotifyURL:   {FieldURLStatus},
	ReturnURL:   {FieldURLReturn},
}

// WireFields returns the wire names behind a logical field.
func WireFields(logical string) ([]string, bool) {
	names, ok := fieldMappings[logical]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

func formatMinorUnits(v int64) string {
	return strconv.FormatInt(v, 10)
}
