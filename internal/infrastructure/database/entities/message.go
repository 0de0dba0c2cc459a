package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "chat_messages"
}

// Message stores one transcript entry. ID gives the append order within a session.
type Message struct {
	ID                   uint           `gorm:"primaryKey"`
	PublicID             string         `gorm:"uniqueIndex;size:64"`
	SessionID            string         `gorm:"size:64;index:idx_message_session"`
	Role                 string         `gorm:"size:32"`
	Content              string         `gorm:"type:text"`
	ToolCalls            datatypes.JSON `gorm:"type:jsonb"`
	ToolCallID           string         `gorm:"size:64"`
	ToolName             string         `gorm:"size:128"`
	IsError              bool           `gorm:"default:false"`
	RequiresConfirmation bool           `gorm:"default:false"`
	CreatedAt            time.Time
}
