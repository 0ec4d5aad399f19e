package live

import (
	"bulletin_board/internal/model"
	"bulletin_board/internal/service"
)

var (
	_ service.Notifier         = (*HubNotifier)(nil)
	_ service.LiveDisconnector = (*Hub)(nil)
)

// HubNotifier publishes message service changes on the hub
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) MessageCreated(msg model.MessageWithUser) {
	evt, err := NewEvent(EventTypeMessageCreated, MessageCreatedPayload{MessageWithUser: msg})
	if err != nil {
		n.hub.log.Error("failed to build live event", "type", EventTypeMessageCreated, "error", err)
		return
	}
	n.hub.Broadcast(evt)
}

func (n *HubNotifier) MessageDeleted(id int64) {
	evt, err := NewEvent(EventTypeMessageDeleted, MessageDeletedPayload{ID: id})
	if err != nil {
		n.hub.log.Error("failed to build live event", "type", EventTypeMessageDeleted, "error", err)
		return
	}
	n.hub.Broadcast(evt)
}
