package redis

const (
	// KeyPrefix namespaces every persistence key
	KeyPrefix = "bookmarks:"
	// KeyUpdatedAt is the hash recording the last write time per key
	KeyUpdatedAt = "bookmarks:meta:updated_at"
)

// Key returns the Redis key for a persistence key
func Key(name string) string {
	return KeyPrefix + name
}

// UpdatedAtKey returns the hash that tracks write timestamps
func UpdatedAtKey() string {
	return KeyUpdatedAt
}
