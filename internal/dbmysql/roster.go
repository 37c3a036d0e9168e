package dbmysql

import "time"

// Directory tables consumed read-only when resolving cohorts. They are
// owned by the enrollment system; the messaging core never writes them.

type Class struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"not null;size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Student struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"not null;size:255"`
	ClassID   string    `gorm:"not null;index;size:36"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// GuardianLink records a guardian-of relationship. A guardian may have
// several students and a student several guardians.
type GuardianLink struct {
	GuardianID string    `gorm:"primaryKey;size:36"`
	StudentID  string    `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
