package cache

import "hash/fnv"

// Fingerprint hashes a SQL string into a statement cache key.
func Fingerprint(query string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(query))
	return h.Sum64()
}
