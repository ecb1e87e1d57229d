package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex returns the lowercase hex MD5 digest of s. This is the
// content fingerprint the Bakong gateway uses as its transaction
// lookup key, not a security primitive.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TokenPrefix returns at most n leading characters of a credential
// for log lines. Empty tokens render as "none".
func TokenPrefix(token string, n int) string {
	if token == "" {
		return "none"
	}
	if len(token) <= n {
		return token
	}
	return token[:n]
}
