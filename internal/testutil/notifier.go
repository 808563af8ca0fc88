package testutil

import (
	"sync"

	"github.com/jhoicas/snacks-api/internal/application/notify"
)

// Notifier registra los mensajes encolados en lugar de enviarlos.
type Notifier struct {
	mu       sync.Mutex
	Messages []notify.Message
}

// Enqueue implementa notify.Notifier.
func (n *Notifier) Enqueue(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
}

// Templates plantillas encoladas, en orden.
func (n *Notifier) Templates() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.Messages))
	for _, m := range n.Messages {
		out = append(out, m.Template)
	}
	return out
}
