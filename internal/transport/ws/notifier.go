package ws

import (
	"context"

	"github.com/vedran77/pokehire/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyContract sends the contract to both of its parties.
func (n *HubNotifier) NotifyContract(event string, c *domain.Contract) {
	evt, err := NewEvent(event, ContractPayload{Contract: c})
	if err != nil {
		n.hub.log.Error(context.Background(), "ws notifier: marshal error", "error", err)
		return
	}
	n.hub.SendToUsers(evt, c.ClientID, c.ContractorID)
}
