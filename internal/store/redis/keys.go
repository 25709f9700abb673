package redis

import "strings"

const (
	// KeyPrefixRows is the prefix for row snapshot keys
	KeyPrefixRows = "disco:rows:"
)

// RowsKey returns the Redis key holding the snapshot of a locator
func RowsKey(locator string) string {
	return KeyPrefixRows + locator
}

// ExtractLocator extracts the locator from a snapshot key
func ExtractLocator(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefixRows) || len(key) == len(KeyPrefixRows) {
		return "", false
	}
	return key[len(KeyPrefixRows):], true
}
