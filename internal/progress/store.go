package progress

// Store is the flat key-value surface the progress code runs against.
// *store.Store satisfies it; tests use an in-memory map.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	MultiGet(keys []string) (map[string]string, error)
	MultiSet(entries map[string]string) error
	Remove(keys ...string) error
	Keys() ([]string, error)
	KeysWithPrefix(prefix string) ([]string, error)
}
