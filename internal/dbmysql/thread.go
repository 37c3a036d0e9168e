package dbmysql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Thread is a conversation between a fixed participant set, optionally
// scoped to one student. Subject is immutable after creation.
type Thread struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Subject      string     `gorm:"not null;size:255"`
	StudentRef   *string    `gorm:"size:36;index"`
	Status       string     `gorm:"not null;default:'open';size:10"`
	Participants StringList `gorm:"not null;type:json"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time

	Messages []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

// HasParticipant reports set membership; order in the column is display
// order only.
func (t *Thread) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// StringList stores an ordered list of user ids in a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported participants column type %T", value)
	}
}
