package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// fingerprintBodyChars bounds how much of the serialized body takes part in
// the fingerprint. Bodies sharing this prefix are treated as the same request.
const fingerprintBodyChars = 50

// Fingerprint identifies a logical request for deduplication:
// method (default GET), endpoint and the first 50 characters of the body.
func Fingerprint(method string, endpoint string, body []byte) string {
	if method == "" {
		method = http.MethodGet
	}
	return method + ":" + endpoint + ":" + bodyPrefix(body, fingerprintBodyChars)
}

// StrictFingerprint replaces the body prefix with a digest of the whole body.
func StrictFingerprint(method string, endpoint string, body []byte) string {
	if method == "" {
		method = http.MethodGet
	}
	if len(body) == 0 {
		return method + ":" + endpoint + ":"
	}

	sum := sha256.Sum256(body)
	return method + ":" + endpoint + ":sha256=" + hex.EncodeToString(sum[:])
}

func bodyPrefix(body []byte, chars int) string {
	count := 0
	for i := range string(body) {
		if count == chars {
			return string(body[:i])
		}
		count++
	}

	return string(body)
}
