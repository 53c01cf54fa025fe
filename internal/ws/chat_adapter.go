package ws

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/models"
)

// ChatNotifier доставляет сообщения чата через хаб. Реализует
// service.MessageNotifier.
type ChatNotifier struct {
	hub *Hub
}

// NewChatNotifier создаёт адаптер доставки сообщений.
func NewChatNotifier(hub *Hub) *ChatNotifier {
	return &ChatNotifier{hub: hub}
}

// NotifyMessage отправляет новое сообщение получателю. Ошибка доставки не
// влияет на сохранение сообщения, чат догонит историю при следующем запросе.
func (n *ChatNotifier) NotifyMessage(receiverID uuid.UUID, message *models.Message) {
	if err := n.hub.BroadcastToUser(receiverID, "chat_message", message); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"receiver_id": receiverID,
			"message_id":  message.ID,
			"error":       err.Error(),
		}).Warn("ws: не удалось доставить сообщение")
	}
}
