package fanout

import (
	"context"
	"errors"
	"fmt"

	"schooltalk/internal/common"
)

var ErrUnknownCohort = errors.New("unknown cohort kind")

// CohortKind is a closed set; Resolve switches over it exhaustively rather
// than branching on free-form strings.
type CohortKind string

const (
	CohortExplicitIDs     CohortKind = "explicit_ids"
	CohortSingleClass     CohortKind = "single_class"
	CohortMultipleClasses CohortKind = "multiple_classes"
	CohortAllGuardians    CohortKind = "all_guardians"
)

// Cohort describes who a broadcast targets. Only the fields for its Kind
// are meaningful.
type Cohort struct {
	Kind     CohortKind `json:"kind"`
	UserIDs  []string   `json:"user_ids,omitempty"`
	ClassID  string     `json:"class_id,omitempty"`
	ClassIDs []string   `json:"class_ids,omitempty"`
}

// Resolve expands the cohort into a deduplicated recipient set via the
// roster directory. The sender is excluded; a thread with oneself is not a
// delivery target.
func Resolve(ctx context.Context, roster common.RosterDirectory, cohort Cohort, senderID string) ([]string, error) {
	var ids []string
	var err error

	switch cohort.Kind {
	case CohortExplicitIDs:
		ids = cohort.UserIDs
	case CohortSingleClass:
		ids, err = roster.ClassMembers(ctx, cohort.ClassID)
	case CohortMultipleClasses:
		for _, classID := range cohort.ClassIDs {
			members, merr := roster.ClassMembers(ctx, classID)
			if merr != nil {
				return nil, merr
			}
			ids = append(ids, members...)
		}
	case CohortAllGuardians:
		ids, err = roster.AllGuardians(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCohort, cohort.Kind)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == senderID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	if len(recipients) == 0 {
		return nil, common.ErrEmptyCohort
	}
	return recipients, nil
}
