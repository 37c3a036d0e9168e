// Package roster resolves cohort targets against the school directory
// tables. It is a read-only adapter; enrollment owns the data.
package roster

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"schooltalk/internal/common"
)

type directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) common.RosterDirectory {
	return &directory{db: db}
}

// ClassMembers returns the distinct guardians of record for every student
// enrolled in the class. Bulk announcements address guardians, not
// students.
func (d *directory) ClassMembers(ctx context.Context, classID string) ([]string, error) {
	var guardianIDs []string
	err := d.db.WithContext(ctx).
		Table("guardian_links").
		Select("DISTINCT guardian_links.guardian_id").
		Joins("JOIN students ON students.id = guardian_links.student_id").
		Where("students.class_id = ?", classID).
		Pluck("guardian_links.guardian_id", &guardianIDs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: class members query: %v", common.ErrUpstreamUnavailable, err)
	}
	return guardianIDs, nil
}

func (d *directory) AllGuardians(ctx context.Context) ([]string, error) {
	var guardianIDs []string
	err := d.db.WithContext(ctx).
		Table("guardian_links").
		Distinct("guardian_id").
		Pluck("guardian_id", &guardianIDs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: guardians query: %v", common.ErrUpstreamUnavailable, err)
	}
	return guardianIDs, nil
}
