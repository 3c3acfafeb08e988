package notification

type MarkReadRequest struct {
	NotificationIDs []string `json:"notificationIds" validate:"required,min=1,max=100,dive,required"`
}

// Message is the frame pushed over the websocket.
type Message struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
