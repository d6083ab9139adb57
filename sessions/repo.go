package sessions

import "errors"

// Keys under which client state is persisted. They match the storage keys the
// web storefront uses so a shared profile directory stays compatible.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyUser            = "user_data"
	KeyServiceContext  = "app_service_context"
	KeyDeliveryContext = "app_delivery_context"
	KeyReloadLock      = "auth_reload_lock"
	KeySupportTickets  = "support_tickets"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrEmptyKey    = errors.New("key cannot be empty")
)

// Repo defines the interface for persistent client key/value state.
// Values are opaque strings; JSON documents are stored serialized.
type Repo interface {
	// Get retrieves a value. The bool reports whether the key was present.
	Get(key string) (string, bool, error)

	// Put creates or replaces a value.
	Put(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}
