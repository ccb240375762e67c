package cache

import "fmt"

// Key builds a cache key from a prefix and parameters, pipe-separated so the
// parts stay readable in diagnostics.
func Key(prefix string, params ...interface{}) string {
	key := prefix
	for _, p := range params {
		key = fmt.Sprintf("%s|%v", key, p)
	}
	return key
}
