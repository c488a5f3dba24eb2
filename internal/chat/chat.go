package chat

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type PayloadType string

const (
	PayloadText  PayloadType = "text"
	PayloadTable PayloadType = "table"
	PayloadJSON  PayloadType = "json"
)

// Message is one transcript entry. Values are never modified after creation.
type Message struct {
	Sender      Sender      `json:"sender"`
	PayloadType PayloadType `json:"payload_type"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func UserText(content string) Message {
	return Message{Sender: SenderUser, PayloadType: PayloadText, Content: content, CreatedAt: time.Now()}
}

func BotText(content string) Message {
	return Message{Sender: SenderBot, PayloadType: PayloadText, Content: content, CreatedAt: time.Now()}
}

// ArchivedMessage is the persisted audit copy of a transcript message.
type ArchivedMessage struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SessionID   string         `json:"session_id" gorm:"index;size:64"`
	Epoch       int            `json:"epoch"`
	Seq         int            `json:"seq"`
	Sender      string         `json:"sender"` // "user" or "bot"
	PayloadType string         `json:"payload_type"`
	Content     string         `json:"content" gorm:"type:text"`
	Meta        datatypes.JSON `json:"meta"`
	CreatedAt   time.Time      `json:"createdAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ArchivedMessage) TableName() string {
	return "messages"
}
