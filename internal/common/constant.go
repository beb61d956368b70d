package common

// CollectionName is the fixed logical namespace of the shared guestbook
// collection. Compile-time configuration, not runtime-tunable.
const CollectionName = "guestbook"

// Length bounds for the sanitized display fields, in runes.
const (
	MaxAuthorNameLen = 40
	MaxMessageLen    = 120
)
