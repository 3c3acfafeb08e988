package notificationRepository

const (
	queryCreateNotification = `
		INSERT INTO notifications (
			id, user_id, type, title, message, data, delivered, is_read, created_at
		) VALUES (
			:id, :user_id, :type, :title, :message, :data, :delivered, :is_read, :created_at
		)
	`

	queryListUndelivered = `
		SELECT id, user_id, type, title, message, data, delivered, is_read, created_at
		FROM notifications
		WHERE user_id = :user_id AND delivered = FALSE
		ORDER BY created_at ASC
		LIMIT :limit
	`

	queryListUnread = `
		SELECT id, user_id, type, title, message, data, delivered, is_read, created_at
		FROM notifications
		WHERE user_id = :user_id AND is_read = FALSE
		ORDER BY created_at DESC
		LIMIT :limit
	`

	queryMarkDelivered = `
		UPDATE notifications
		SET delivered = TRUE
		WHERE id = ANY(:ids)
	`

	queryMarkRead = `
		UPDATE notifications
		SET is_read = TRUE, delivered = TRUE
		WHERE user_id = :user_id AND id = ANY(:ids)
	`
)
