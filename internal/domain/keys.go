package domain

// Key is an opaque WireGuard key as emitted by the wg tool (base64). It is never validated.
type Key string

func (k Key) String() string {
	return string(k)
}

// IsEmpty returns true if the key has no content.
func (k Key) IsEmpty() bool {
	return k == ""
}

type KeyPair struct {
	PrivateKey Key
	PublicKey  Key
}
