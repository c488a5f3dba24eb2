package db

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"talktonic/internal/chat"
)

// Archive writes transcript messages to the messages table.
type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) Archive(ctx context.Context, sessionID string, epoch, seq int, m chat.Message, meta map[string]any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode archive meta: %w", err)
	}
	rec := chat.ArchivedMessage{
		SessionID:   sessionID,
		Epoch:       epoch,
		Seq:         seq,
		Sender:      string(m.Sender),
		PayloadType: string(m.PayloadType),
		Content:     m.Content,
		Meta:        datatypes.JSON(raw),
		CreatedAt:   m.CreatedAt,
	}
	return a.db.WithContext(ctx).Create(&rec).Error
}

// History returns the archived messages of one session epoch in order.
func (a *Archive) History(ctx context.Context, sessionID string, epoch int) ([]chat.ArchivedMessage, error) {
	var out []chat.ArchivedMessage
	err := a.db.WithContext(ctx).
		Where("session_id = ? AND epoch = ?", sessionID, epoch).
		Order("seq asc").
		Find(&out).Error
	return out, err
}

// CountByPath tallies archived bot replies per routing path.
func (a *Archive) CountByPath(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Path  string
		Total int64
	}
	err := a.db.WithContext(ctx).Model(&chat.ArchivedMessage{}).
		Select("meta->>'path' AS path, COUNT(*) AS total").
		Where("sender = ?", string(chat.SenderBot)).
		Group("path").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Path] = r.Total
	}
	return out, nil
}
