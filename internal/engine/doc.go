// Package engine guards access to the opaque per-owner session engine.
//
// The engine is a stateful, non-cloneable resource that is not safe for
// concurrent mutation. Guard serializes every call behind a mutex and
// persists the engine's serialized state to the encrypted blob store after
// each mutating operation, so a crash never loses more than the call in
// flight.
package engine
