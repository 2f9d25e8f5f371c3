package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymratapp/gymrat-server/models"
)

func TestUpsertRoutineMatchesNamesCaseInsensitively(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoutineService(db)
	user := seedUser(t, db, "ana")

	first := []models.Exercise{{Name: "bench", Sets: 4, Reps: 8, Weight: 60}}
	created, err := svc.Upsert(user.ID, "Push Day", first)
	require.NoError(t, err)

	second := []models.Exercise{
		{Name: "bench", Sets: 5, Reps: 5, Weight: 70},
		{Name: "dips", Sets: 3, Reps: 10},
	}
	updated, err := svc.Upsert(user.ID, "push day", second)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	_, exercises, err := svc.Load(created.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, 70.0, exercises[0].Weight)

	// A different name creates a second routine.
	_, err = svc.Upsert(user.ID, "Leg Day", first)
	require.NoError(t, err)
	routines, _, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Len(t, routines, 2)
}

func TestUpsertRoutineRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoutineService(db)
	user := seedUser(t, db, "ana")

	_, err := svc.Upsert(user.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadRoutineReturnsFreshCopies(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoutineService(db)
	user := seedUser(t, db, "ana")

	created, err := svc.Upsert(user.ID, "Pull Day", []models.Exercise{
		{Name: "row", Sets: 4, Reps: 10, Weight: 50},
	})
	require.NoError(t, err)

	_, firstCopy, err := svc.Load(created.ID, user.ID)
	require.NoError(t, err)
	firstCopy[0].Sets = 99

	_, secondCopy, err := svc.Load(created.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, secondCopy[0].Sets)
}

func TestLoadRoutineHidesOtherUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoutineService(db)
	owner := seedUser(t, db, "ana")
	other := seedUser(t, db, "ben")

	created, err := svc.Upsert(owner.ID, "Push Day", nil)
	require.NoError(t, err)

	_, _, err = svc.Load(created.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
