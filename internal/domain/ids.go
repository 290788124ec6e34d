package domain

// UserID identifies a participant. It is derived deterministically from the
// participant's public keys, so the same key material always maps to the same
// identifier on both sides.
type UserID string

// String returns the string form of the user identifier.
func (u UserID) String() string { return string(u) }

// Seeker is the opaque lookup key a sent message is addressed under on the
// message board. It is assigned by the session engine at send time and is
// also used to resolve reply references.
type Seeker string

// String returns the string form of the seeker.
func (s Seeker) String() string { return string(s) }

// PublicKeys is a peer's serialized public key material, opaque to this layer.
type PublicKeys []byte
