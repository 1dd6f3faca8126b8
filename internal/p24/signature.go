package p24

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

func digest(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// outboundSignature signs session|merchant|amount|currency|crc.
func outboundSignature(sessionID, merchantID, amount, currency, crcKey string) string {
	return digest(sessionID, merchantID, amount, currency, crcKey)
}

// verificationSignature signs session|order|amount|currency|crc.
func verificationSignature(sessionID, orderID string, amount int64, currency, crcKey string) string {
	return digest(sessionID, orderID, formatMinorUnits(amount), currency, crcKey)
}
