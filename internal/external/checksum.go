package external

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Gateway endpoint paths. They take part in the signature and must match exactly.
const (
	PayPath    = "/pg/v1/pay"
	StatusPath = "/pg/v1/status"
)

// Sign computes the X-VERIFY header value:
// hex(SHA256(base64(payload) + path + secret)) + "###" + keyIndex.
// Status checks pass an empty payload, which encodes to the empty string.
func Sign(payload []byte, secret, keyIndex, path string) string {
	encoded := base64.StdEncoding.EncodeToString(payload)
	hash := sha256.Sum256([]byte(encoded + path + secret))
	return hex.EncodeToString(hash[:]) + "###" + keyIndex
}

// StatusPathFor returns the signed path of a status check
func StatusPathFor(merchantID, merchantTransactionID string) string {
	return StatusPath + "/" + merchantID + "/" + merchantTransactionID
}
