package voiceRepository

import (
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type VoiceCommandDB struct {
	ID          sql.NullString  `db:"id"`
	UserID      sql.NullString  `db:"user_id"`
	Transcript  sql.NullString  `db:"transcript"`
	Language    sql.NullString  `db:"language"`
	Dialect     sql.NullString  `db:"dialect"`
	CommandType sql.NullString  `db:"command_type"`
	Response    sql.NullString  `db:"response"`
	AudioURL    sql.NullString  `db:"audio_url"`
	Confidence  sql.NullFloat64 `db:"confidence"`
	Metadata    sql.NullString  `db:"metadata"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r *voiceRepository) CreateVoiceCommand(ctx context.Context, cmd entity.VoiceCommand) error {
	requestID := contextPkg.GetRequestID(ctx)

	metadataJSON, err := json.Marshal(cmd.Metadata)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal metadata")
		return err
	}

	argsKV := map[string]interface{}{
		"id":           cmd.ID,
		"user_id":      cmd.UserID,
		"transcript":   cmd.Transcript,
		"language":     cmd.Language,
		"dialect":      cmd.Dialect,
		"command_type": cmd.CommandType,
		"response":     cmd.Response,
		"audio_url":    sql.NullString{String: cmd.AudioURL, Valid: cmd.AudioURL != ""},
		"confidence":   cmd.Confidence,
		"metadata":     string(metadataJSON),
		"created_at":   cmd.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateVoiceCommand, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateVoiceCommand")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating voice command")
		return err
	}

	return nil
}

func (r *voiceRepository) GetVoiceCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var commandsList []VoiceCommandDB
	var total int

	countQuery, countArgs, err := sqlx.Named(queryCountVoiceCommandsByUserID, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Count query preparation err")
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Count query execution err")
		return nil, 0, err
	}

	query, args, err := sqlx.Named(queryGetVoiceCommandsByUserID, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVoiceCommandsByUserID named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &commandsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVoiceCommandsByUserID execution err")
		return nil, 0, err
	}

	commands := make([]entity.VoiceCommand, 0, len(commandsList))
	for _, cmdDB := range commandsList {
		commands = append(commands, r.makeVoiceCommand(cmdDB))
	}

	return commands, total, nil
}

func (r *voiceRepository) makeVoiceCommand(cmdDB VoiceCommandDB) entity.VoiceCommand {
	var metadata map[string]interface{}
	if cmdDB.Metadata.Valid && cmdDB.Metadata.String != "" {
		if err := json.Unmarshal([]byte(cmdDB.Metadata.String), &metadata); err != nil {
			r.log.WithFields(logrus.Fields{
				"command_id": cmdDB.ID.String,
				"error":      err.Error(),
			}).Warn("Failed to unmarshal voice command metadata")
		}
	}

	return entity.VoiceCommand{
		ID:          cmdDB.ID.String,
		UserID:      cmdDB.UserID.String,
		Transcript:  cmdDB.Transcript.String,
		Language:    cmdDB.Language.String,
		Dialect:     cmdDB.Dialect.String,
		CommandType: cmdDB.CommandType.String,
		Response:    cmdDB.Response.String,
		AudioURL:    cmdDB.AudioURL.String,
		Confidence:  cmdDB.Confidence.Float64,
		Metadata:    metadata,
		CreatedAt:   cmdDB.CreatedAt,
	}
}
