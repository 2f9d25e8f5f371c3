package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymratapp/gymrat-server/models"
)

func validLeague(name string) CreateLeagueInput {
	return CreateLeagueInput{
		Name:    name,
		Prize:   "asado",
		EndDate: time.Now().AddDate(0, 1, 0),
	}
}

func TestCreateLeagueEnrollsOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")

	league, err := svc.Create(context.Background(), owner.ID, validLeague("Winter Arc"))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, league.OwnerID)
	assert.True(t, strings.HasPrefix(league.Code, "WIN"))
	assert.Len(t, league.Code, 6)
	assert.Equal(t, 0, memberPoints(t, db, league.ID, owner.ID))
}

func TestCreateLeagueValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")

	_, err := svc.Create(context.Background(), owner.ID, CreateLeagueInput{Prize: "x", EndDate: time.Now()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), owner.ID, CreateLeagueInput{Name: "x", EndDate: time.Now()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), owner.ID, CreateLeagueInput{Name: "x", Prize: "y"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinByCodeIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")
	joiner := seedUser(t, db, "ben")

	league, err := svc.Create(context.Background(), owner.ID, validLeague("Runners"))
	require.NoError(t, err)

	joined, err := svc.JoinByCode(context.Background(), joiner.ID, "  "+strings.ToLower(league.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, league.ID, joined.ID)
	assert.Equal(t, 0, memberPoints(t, db, league.ID, joiner.ID))

	_, err = svc.JoinByCode(context.Background(), joiner.ID, league.Code)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = svc.JoinByCode(context.Background(), joiner.ID, "NOPE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinPublicRejectsPrivateLeagues(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")
	joiner := seedUser(t, db, "ben")

	private, err := svc.Create(context.Background(), owner.ID, validLeague("Secret"))
	require.NoError(t, err)
	_, err = svc.JoinPublic(context.Background(), joiner.ID, private.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	in := validLeague("Open Club")
	in.IsPublic = true
	public, err := svc.Create(context.Background(), owner.ID, in)
	require.NoError(t, err)
	_, err = svc.JoinPublic(context.Background(), joiner.ID, public.ID)
	require.NoError(t, err)
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")
	member := seedUser(t, db, "ben")

	league, err := svc.Create(context.Background(), owner.ID, validLeague("Crew"))
	require.NoError(t, err)
	_, err = svc.JoinByCode(context.Background(), member.ID, league.Code)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), member.ID, league.ID, UpdateLeagueInput{Name: "Taken Over"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), owner.ID, league.ID, UpdateLeagueInput{Prize: "trofeo"})
	require.NoError(t, err)
	assert.Equal(t, "trofeo", updated.Prize)
	assert.Equal(t, "Crew", updated.Name)

	err = svc.Delete(context.Background(), member.ID, league.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), owner.ID, league.ID))
}

func TestDeleteLeagueLeavesActivitiesAndTotalsAlone(t *testing.T) {
	db := newTestDB(t)
	leagues := NewLeagueService(db)
	ledger := newTestLedger(db)
	activities := NewActivityService(db, ledger, NewRoutineService(db))
	owner := seedUser(t, db, "ana")

	league, err := leagues.Create(context.Background(), owner.ID, validLeague("Doomed"))
	require.NoError(t, err)

	_, err = activities.Log(context.Background(), owner.ID, LogActivityInput{
		SportID: models.SportRunning, Duration: 30, Distance: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, memberPoints(t, db, league.ID, owner.ID))

	require.NoError(t, leagues.Delete(context.Background(), owner.ID, league.ID))

	var members int64
	require.NoError(t, db.Model(&models.LeagueMember{}).
		Where("league_id = ?", league.ID).Count(&members).Error)
	assert.EqualValues(t, 0, members)
	assert.Equal(t, 50, userTotal(t, db, owner.ID))

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMineAndPublicListings(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)
	owner := seedUser(t, db, "ana")
	other := seedUser(t, db, "ben")

	in := validLeague("Visible")
	in.IsPublic = true
	_, err := svc.Create(context.Background(), owner.ID, in)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, validLeague("Hidden"))
	require.NoError(t, err)

	mine, err := svc.Mine(owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Visible", mine[0].Name)

	public, total, err := svc.Public(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, public, 1)
	assert.Equal(t, "Visible", public[0].Name)
}

func TestGenerateJoinCodeFallsBackForSymbolNames(t *testing.T) {
	code := generateJoinCode("!!!")
	assert.True(t, strings.HasPrefix(code, "FIT"))
	assert.Len(t, code, 6)

	code = generateJoinCode("la liga")
	assert.True(t, strings.HasPrefix(code, "LAL"))
}
