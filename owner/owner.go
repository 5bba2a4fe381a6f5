// Package owner implements the transient-editing owner token: an opaque,
// process-local identity that authorises in-place mutation of a trie node
// during a single produce call.
package owner

// Token is an opaque identity. It carries no data; only its pointer
// identity is meaningful. A node stamped with a *Token may be mutated in
// place by code holding that same *Token — any other caller must clone
// the node before writing to it.
//
// Tokens are minted once per produce call and discarded when the call
// returns; they are never reused, so a node from a finished produce call
// can never be mistaken for transient by a later one.
type Token struct {
	_ [0]func() // forbids value comparison; always compare *Token
	_ byte      // non-zero size, so every New returns its own address
}

// New mints a fresh owner token, distinct from every other live token.
func New() *Token {
	return new(Token)
}

// Is reports whether nodeOwner matches the active owner. A nil
// nodeOwner never matches a live owner, and a nil active owner never
// matches anything, not even a nil nodeOwner.
func Is(nodeOwner, active *Token) bool {
	return active != nil && nodeOwner == active
}
