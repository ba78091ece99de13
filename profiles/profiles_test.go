package profiles_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/profiles"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bdb.Close() })

	ctx := context.Background()
	for _, model := range db.Models() {
		_, err := bdb.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return bdb
}

func createUser(t *testing.T, bdb *bun.DB, username, first, last string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Password:  "x",
		Email:     username + "@example.com",
		FirstName: first,
		LastName:  last,
	}
	_, err := bdb.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

func TestEnsureCreatesDefaultProfile(t *testing.T) {
	bdb := setupDB(t)
	createUser(t, bdb, "anna", "Anna", "Karenina")

	profile, err := profiles.Ensure(context.Background(), bdb, "anna")
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Nil(t, profile.JockeyID)
	require.NotNil(t, profile.User)
	assert.Equal(t, "anna", profile.User.Username)

	// A second access reuses the same profile.
	again, err := profiles.Ensure(context.Background(), bdb, "anna")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestEnsureUnknownUser(t *testing.T) {
	bdb := setupDB(t)

	_, err := profiles.Ensure(context.Background(), bdb, "ghost")
	assert.ErrorIs(t, err, profiles.ErrUnknownUser)
}

func TestFindWithoutProfile(t *testing.T) {
	bdb := setupDB(t)
	createUser(t, bdb, "boris", "", "")

	_, err := profiles.Find(context.Background(), bdb, "boris")
	assert.ErrorIs(t, err, profiles.ErrNoProfile)
}

func TestSyncJockeySynthesizesRecord(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	user := createUser(t, bdb, "viktor", "Viktor", "Petrov")

	profile := &models.UserProfile{UserID: user.ID, Role: models.RoleJockey}
	_, err := bdb.NewInsert().Model(profile).Exec(ctx)
	require.NoError(t, err)
	profile.User = user

	require.NoError(t, profiles.SyncJockey(ctx, bdb, profile))

	require.NotNil(t, profile.JockeyID)
	require.NotNil(t, profile.Jockey)
	assert.Equal(t, "Viktor Petrov", profile.Jockey.Name)
	assert.Equal(t, profiles.DefaultJockeyAge, profile.Jockey.Age)
	assert.Equal(t, profiles.DefaultJockeyRating, profile.Jockey.Rating)
	assert.Equal(t, profiles.UnspecifiedAddress, profile.Jockey.Address)

	// Idempotent: a second sync does not create another jockey.
	require.NoError(t, profiles.SyncJockey(ctx, bdb, profile))
	count, err := bdb.NewSelect().Model((*models.Jockey)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSyncJockeyNameFallsBackToUsername(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	user := createUser(t, bdb, "rider42", "", "")

	address := "Begovaya st. 22"
	profile := &models.UserProfile{UserID: user.ID, Role: models.RoleJockey, Address: &address}
	_, err := bdb.NewInsert().Model(profile).Exec(ctx)
	require.NoError(t, err)
	profile.User = user

	require.NoError(t, profiles.SyncJockey(ctx, bdb, profile))

	require.NotNil(t, profile.Jockey)
	assert.Equal(t, "rider42", profile.Jockey.Name)
	assert.Equal(t, address, profile.Jockey.Address)
}

func TestSyncJockeyNoopForOtherRoles(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	createUser(t, bdb, "plain", "", "")

	profile, err := profiles.Ensure(ctx, bdb, "plain")
	require.NoError(t, err)
	require.NoError(t, profiles.SyncJockey(ctx, bdb, profile))

	assert.Nil(t, profile.JockeyID)
	count, err := bdb.NewSelect().Model((*models.Jockey)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSetRoleToJockeyAndBack(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	createUser(t, bdb, "maria", "Maria", "Ivanova")

	profile, err := profiles.Ensure(ctx, bdb, "maria")
	require.NoError(t, err)

	require.NoError(t, profiles.SetRole(ctx, bdb, profile, models.RoleJockey))
	require.NotNil(t, profile.JockeyID)
	jockeyID := *profile.JockeyID

	require.NoError(t, profiles.SetRole(ctx, bdb, profile, models.RoleUser))
	assert.Nil(t, profile.JockeyID)

	exists, err := bdb.NewSelect().Model((*models.Jockey)(nil)).
		Where("id = ?", jockeyID).
		Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "jockey record should be removed when leaving the jockey role")
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	createUser(t, bdb, "nils", "", "")

	profile, err := profiles.Ensure(ctx, bdb, "nils")
	require.NoError(t, err)

	assert.Error(t, profiles.SetRole(ctx, bdb, profile, "superadmin"))
	assert.Equal(t, models.RoleUser, profile.Role)
}

func TestDeleteCascadesLinkedJockey(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	createUser(t, bdb, "oleg", "Oleg", "Sidorov")

	profile, err := profiles.Ensure(ctx, bdb, "oleg")
	require.NoError(t, err)
	require.NoError(t, profiles.SetRole(ctx, bdb, profile, models.RoleJockey))
	jockeyID := *profile.JockeyID

	require.NoError(t, profiles.Delete(ctx, bdb, profile))

	_, err = profiles.Find(ctx, bdb, "oleg")
	assert.ErrorIs(t, err, profiles.ErrNoProfile)

	exists, err := bdb.NewSelect().Model((*models.Jockey)(nil)).
		Where("id = ?", jockeyID).
		Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteUserRoleLeavesRosterAlone(t *testing.T) {
	bdb := setupDB(t)
	ctx := context.Background()
	createUser(t, bdb, "pavel", "", "")

	roster := &models.Jockey{Name: "Club Rider", Address: "Kazan", Age: 30, Rating: 7}
	_, err := bdb.NewInsert().Model(roster).Exec(ctx)
	require.NoError(t, err)

	profile, err := profiles.Ensure(ctx, bdb, "pavel")
	require.NoError(t, err)
	require.NoError(t, profiles.Delete(ctx, bdb, profile))

	count, err := bdb.NewSelect().Model((*models.Jockey)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
