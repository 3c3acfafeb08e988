package voiceRepository

const (
	queryCreateVoiceCommand = `
		INSERT INTO voice_commands (
			id, user_id, transcript, language, dialect, command_type,
			response, audio_url, confidence, metadata, created_at
		) VALUES (
			:id, :user_id, :transcript, :language, :dialect, :command_type,
			:response, :audio_url, :confidence, :metadata, :created_at
		)
	`

	queryGetVoiceCommandsByUserID = `
		SELECT
			id, user_id, transcript, language, dialect, command_type,
			response, audio_url, confidence, metadata, created_at
		FROM voice_commands
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountVoiceCommandsByUserID = `
		SELECT COUNT(*)
		FROM voice_commands
		WHERE user_id = :user_id
	`
)
