package conversation

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/infrastructure/database/entities"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// PostgresStore persists session transcripts in the chat_messages table.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore constructs the store.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ domain.MessageStore = (*PostgresStore)(nil)

// Append inserts one message. Row ids preserve the append order.
func (s *PostgresStore) Append(ctx context.Context, msg *domain.Message) error {
	entity, err := mapMessageToEntity(msg)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to map message to entity",
			err,
			"message-append-map-001",
		)
	}
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append message",
			err,
			"message-append-db-001",
		)
	}
	return nil
}

// List returns the session transcript oldest first.
func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var rows []entities.Message
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"message-list-db-001",
		)
	}

	out := make([]domain.Message, 0, len(rows))
	for i := range rows {
		msg, err := mapMessageFromEntity(&rows[i])
		if err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInternal,
				"failed to decode stored tool calls",
				err,
				"message-list-map-001",
			)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear removes every message of the session.
func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&entities.Message{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to clear messages",
			err,
			"message-clear-db-001",
		)
	}
	return nil
}

func mapMessageToEntity(msg *domain.Message) (*entities.Message, error) {
	entity := &entities.Message{
		PublicID:             msg.ID,
		SessionID:            msg.SessionID,
		Role:                 string(msg.Role),
		Content:              msg.Content,
		ToolCallID:           msg.ToolCallID,
		ToolName:             msg.ToolName,
		IsError:              msg.IsError,
		RequiresConfirmation: msg.RequiresConfirmation,
		CreatedAt:            msg.CreatedAt,
	}
	if len(msg.ToolCalls) > 0 {
		raw, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return nil, err
		}
		entity.ToolCalls = datatypes.JSON(raw)
	}
	return entity, nil
}

func mapMessageFromEntity(entity *entities.Message) (domain.Message, error) {
	msg := domain.Message{
		ID:                   entity.PublicID,
		SessionID:            entity.SessionID,
		Role:                 domain.Role(entity.Role),
		Content:              entity.Content,
		ToolCallID:           entity.ToolCallID,
		ToolName:             entity.ToolName,
		IsError:              entity.IsError,
		RequiresConfirmation: entity.RequiresConfirmation,
		CreatedAt:            entity.CreatedAt,
	}
	if len(entity.ToolCalls) > 0 && string(entity.ToolCalls) != "null" {
		if err := json.Unmarshal(entity.ToolCalls, &msg.ToolCalls); err != nil {
			return domain.Message{}, err
		}
	}
	return msg, nil
}
