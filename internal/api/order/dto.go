package order

type CreateVoiceOrderRequest struct {
	VoiceCommand string `json:"voiceCommand" validate:"required,min=1,max=1000"`
	Language     string `json:"language" validate:"required,oneof=hindi tamil kannada bhojpuri bengali marathi gujarati english"`
	Dialect      string `json:"dialect" validate:"omitempty,oneof=standard colloquial"`
	DeviceID     string `json:"deviceId" validate:"omitempty,max=128"`
}

type ConfirmOrderRequest struct {
	ConfirmationCommand string `json:"confirmationCommand" validate:"required,min=1,max=500"`
	Language            string `json:"language" validate:"omitempty,oneof=hindi tamil kannada bhojpuri bengali marathi gujarati english"`
	Dialect             string `json:"dialect" validate:"omitempty,oneof=standard colloquial"`
}

type CancelOrderRequest struct {
	Reason       string `json:"reason" validate:"omitempty,max=500"`
	VoiceCommand string `json:"voiceCommand" validate:"omitempty,max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=preparing ready out_for_delivery delivered"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

type QueuedOrder struct {
	VoiceCommand string `json:"voiceCommand" validate:"required,min=1,max=1000"`
	Language     string `json:"language" validate:"required,oneof=hindi tamil kannada bhojpuri bengali marathi gujarati english"`
	Dialect      string `json:"dialect" validate:"omitempty,oneof=standard colloquial"`
}

type SyncOrdersRequest struct {
	DeviceID string        `json:"deviceId" validate:"required,max=128"`
	Orders   []QueuedOrder `json:"orders" validate:"required,min=1,max=100,dive"`
}

type ListOrdersQuery struct {
	Status     string
	Page       int
	Limit      int
	AsMerchant bool
}
