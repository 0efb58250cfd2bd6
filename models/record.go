package models

// CollectionName identifies one local store collection.
type CollectionName string

const (
	CollectionProfiles CollectionName = "profiles"
	CollectionChats    CollectionName = "chats"
	CollectionMemories CollectionName = "memories"
	CollectionSettings CollectionName = "settings"
	CollectionAssets   CollectionName = "assets"
)

// Collections lists every synchronized collection in a stable order.
var Collections = []CollectionName{
	CollectionProfiles,
	CollectionChats,
	CollectionMemories,
	CollectionSettings,
	CollectionAssets,
}

// Valid reports whether c is one of [Collections].
func (c CollectionName) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Record is one persisted document: the record identifier plus its JSON
// encoding.
type Record struct {
	ID   string
	Data []byte
}
