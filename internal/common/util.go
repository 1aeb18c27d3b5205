package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandByteArray returns size cryptographically random bytes.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return buf
}

// MakeRandHexString returns a hex string encoding size random bytes,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	return hex.EncodeToString(GenerateRandByteArray(size)), nil
}
