package ports

import "github.com/bnema/haptic-handshake/internal/domain"

// AgentPresence reports whether an agent's handshake animation is still playing.
type AgentPresence interface {
	HandshakeActive(id domain.AgentID) bool
}
