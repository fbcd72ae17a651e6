package security

import (
	"crypto/subtle"

	"github.com/aq2208/tableorder/configs"
)

// Client is a staff application allowed to request a token.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read"}
	Enabled bool
}

// Registry is the in-memory client list loaded from config.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(cfgClients []configs.StaffClient) *Registry {
	r := &Registry{clients: make(map[string]Client, len(cfgClients))}
	for _, c := range cfgClients {
		if c.ID == "" {
			continue
		}
		r.clients[c.ID] = Client{ID: c.ID, Secret: c.Secret, Perms: c.Perms, Enabled: c.Secret != ""}
	}
	return r
}

// Authenticate returns the client when id and secret match an enabled entry.
func (r *Registry) Authenticate(id, secret string) (Client, bool) {
	cl, ok := r.clients[id]
	if !ok || !cl.Enabled {
		return Client{}, false
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(cl.Secret)) != 1 {
		return Client{}, false
	}
	return cl, true
}
