// Package domain holds the core types shared across the realtime hub:
// caller identities and the wire-stable message envelopes.
package domain

// Identity is the resolved caller identity attached to a connection.
// The zero value means the connection is anonymous (public dashboard
// viewers connect without a credential).
type Identity string

// Anonymous is the identity of an unauthenticated connection.
const Anonymous Identity = ""

// IsAnonymous reports whether the identity carries no caller.
func (i Identity) IsAnonymous() bool {
	return i == Anonymous
}

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "0"
	}
	return string(i)
}
