package notification

import "VoiceCommerce/pkg/response"

var (
	ErrCreateNotification = response.NewError(500, "failed to store notification")
	ErrListNotifications  = response.NewError(500, "failed to fetch notifications")
	ErrMarkRead           = response.NewError(500, "failed to update notification status")
)
