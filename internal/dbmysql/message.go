package dbmysql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"schooltalk/internal/common"
)

// Message is one entry in a thread's append-only log. Seq is assigned under
// the thread lock and defines delivery order together with CreatedAt.
type Message struct {
	ID          string         `gorm:"primaryKey;size:36"`
	ThreadID    string         `gorm:"not null;index:idx_thread_seq,unique;size:36"`
	Seq         int            `gorm:"not null;index:idx_thread_seq,unique"`
	SenderID    string         `gorm:"not null;index;size:36"`
	Body        string         `gorm:"type:text"`
	Attachments AttachmentList `gorm:"type:json"`
	Read        bool           `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

// AttachmentList stores attachment metadata alongside the message body.
// The bytes themselves live in blob storage.
type AttachmentList []common.Attachment

func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]common.Attachment{})
	}
	return json.Marshal(l)
}

func (l *AttachmentList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported attachments column type %T", value)
	}
}
