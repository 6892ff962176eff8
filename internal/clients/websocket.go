package clients

import (
	"context"
	"fmt"

	"payment-collect-visa/internal/domain"
	ws "payment-collect-visa/internal/transport/websocket"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyCollectProgress(
	ctx context.Context,
	userID int64,
	collectID string,
	progress float64,
	stage string,
) error {
	if c == nil || c.hub == nil {
		return nil
	}

	data := map[string]interface{}{
		"id":       collectID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    ws.TypeCollectProgress,
		Channel: fmt.Sprintf("notify_user_of_collect_progress#%d", userID),
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyCollectComplete(
	ctx context.Context,
	userID int64,
	collectID string,
	collectType string,
	files []domain.Attachment,
) error {
	if c == nil || c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    ws.TypeCollectComplete,
		Channel: fmt.Sprintf("notify_user_when_collect_complete#%d", userID),
		Data: map[string]interface{}{
			"id":      collectID,
			"type":    collectType,
			"files":   files,
			"user_id": userID,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyCollectFailed(ctx context.Context, userID int64, collectID string, errMsg string) error {
	if c == nil || c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    ws.TypeCollectFailed,
		Channel: fmt.Sprintf("notify_user_when_collect_failed#%d", userID),
		Data: map[string]interface{}{
			"id":      collectID,
			"message": errMsg,
			"user_id": userID,
		},
	})
	return nil
}
