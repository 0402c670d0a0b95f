package services

import (
	"testing"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/stretchr/testify/assert"
)

func memberID(id int64) *int64 {
	return &id
}

func TestReconcileMembersDeduplicatesByID(t *testing.T) {

	members := []models.Member{
		{ID: memberID(1), Name: "Alice", IsCreator: true},
		{ID: memberID(1), Name: "Alice Corrected", IsCreator: true},
		{ID: memberID(2), Name: "Bob"},
	}

	result, err := ReconcileMembers(members, 6)

	assert.NoError(t, err)
	assert.Len(t, result, 2, "duplicate persisted ids should collapse to one entry")
	assert.Equal(t, "Alice Corrected", result[0].Name, "the last write per id wins")
}

func TestReconcileMembersNewEntriesNeverMerge(t *testing.T) {

	// Two unsaved members share no id; they must get distinct synthetic keys
	members := []models.Member{
		{Name: "Creator", IsCreator: true},
		{Name: "New one"},
		{Name: "New two"},
	}

	result, err := ReconcileMembers(members, 6)

	assert.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestReconcileMembersCapacityIsStrict(t *testing.T) {

	members := []models.Member{
		{ID: memberID(1), Name: "A", IsCreator: true},
		{ID: memberID(2), Name: "B"},
		{ID: memberID(3), Name: "C"},
	}

	// With max 3, a reconciled size of 3 is already too many
	_, err := ReconcileMembers(members, 3)

	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestReconcileMembersRejectsEmptyName(t *testing.T) {

	members := []models.Member{
		{ID: memberID(1), Name: "   ", IsCreator: true},
	}

	_, err := ReconcileMembers(members, 6)

	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestReconcileMembersRequiresExactlyOneCreator(t *testing.T) {

	noCreator := []models.Member{
		{ID: memberID(1), Name: "A"},
		{ID: memberID(2), Name: "B"},
	}
	_, err := ReconcileMembers(noCreator, 6)
	assert.Error(t, err)

	twoCreators := []models.Member{
		{ID: memberID(1), Name: "A", IsCreator: true},
		{ID: memberID(2), Name: "B", IsCreator: true},
	}
	_, err = ReconcileMembers(twoCreators, 6)
	assert.Error(t, err)
}

func TestReconcileMembersDoesNotModifyInput(t *testing.T) {

	members := []models.Member{
		{ID: memberID(1), Name: "  Alice  ", IsCreator: true},
	}

	result, err := ReconcileMembers(members, 6)

	assert.NoError(t, err)
	assert.Equal(t, "Alice", result[0].Name)
	assert.Equal(t, "  Alice  ", members[0].Name, "the input slice must stay untouched")
}
