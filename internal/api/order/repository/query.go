package orderRepository

const (
	orderColumns = `
			id, user_id, merchant_id, items, total_amount, status, timeline,
			voice_command, language, dialect, processed_command, confirmation,
			is_offline, synced, sync_time, device_id,
			delivery, payment, cancellation, created_at, updated_at`

	queryCreateOrder = `
		INSERT INTO orders (
			id, user_id, merchant_id, items, total_amount, status, timeline,
			voice_command, language, dialect, processed_command, confirmation,
			is_offline, synced, sync_time, device_id,
			delivery, payment, cancellation, created_at, updated_at
		) VALUES (
			:id, :user_id, :merchant_id, :items, :total_amount, :status, :timeline,
			:voice_command, :language, :dialect, :processed_command, :confirmation,
			:is_offline, :synced, :sync_time, :device_id,
			:delivery, :payment, :cancellation, :created_at, :updated_at
		)
	`

	queryGetOrderByID = `
		SELECT` + orderColumns + `
		FROM orders
		WHERE id = :id
	`

	queryListOrders = `
		SELECT` + orderColumns + `
		FROM orders
		WHERE (CAST(:user_id AS TEXT) = '' OR user_id = :user_id)
		AND (CAST(:merchant_id AS TEXT) = '' OR merchant_id = :merchant_id)
		AND (CAST(:status AS TEXT) = '' OR status = :status)
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountOrders = `
		SELECT COUNT(*)
		FROM orders
		WHERE (CAST(:user_id AS TEXT) = '' OR user_id = :user_id)
		AND (CAST(:merchant_id AS TEXT) = '' OR merchant_id = :merchant_id)
		AND (CAST(:status AS TEXT) = '' OR status = :status)
	`

	// Status and timeline are written together; the expected status guards
	// against a concurrent transition.
	queryUpdateOrderState = `
		UPDATE orders
		SET
			merchant_id = :merchant_id,
			items = :items,
			total_amount = :total_amount,
			status = :status,
			timeline = :timeline,
			processed_command = :processed_command,
			confirmation = :confirmation,
			is_offline = :is_offline,
			synced = :synced,
			sync_time = :sync_time,
			device_id = :device_id,
			delivery = :delivery,
			payment = :payment,
			cancellation = :cancellation,
			updated_at = :updated_at
		WHERE id = :id AND status = :expected_status
	`

	queryFindUnsyncedPlaceholder = `
		SELECT` + orderColumns + `
		FROM orders
		WHERE user_id = :user_id
		AND device_id = :device_id
		AND voice_command = :voice_command
		AND is_offline = TRUE
		AND synced = FALSE
		AND status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
	`

	querySearchProducts = `
		SELECT
			id, merchant_id, name, alternative_names, voice_patterns,
			category, unit, price, stock_quantity, low_stock_threshold,
			is_active, created_at
		FROM products
		WHERE is_active = TRUE
		AND (
			name ILIKE :pattern
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(alternative_names) AS alt
				WHERE alt->>'name' ILIKE :pattern
			)
			OR EXISTS (
				SELECT 1
				FROM jsonb_array_elements(voice_patterns) AS vp,
					jsonb_array_elements_text(vp->'patterns') AS phrase
				WHERE phrase ILIKE :pattern
			)
		)
		AND (CAST(:category AS TEXT) = '' OR category ILIKE :category)
		AND (CAST(:max_price AS NUMERIC) IS NULL OR price <= CAST(:max_price AS NUMERIC))
		ORDER BY (LOWER(name) = LOWER(:name)) DESC, created_at ASC, id ASC
		LIMIT :limit
	`
)
