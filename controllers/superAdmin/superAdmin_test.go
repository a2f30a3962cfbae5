package superAdminController_test

import (
	"coursehub/controllers/controllertest"
	"coursehub/models"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersRequiresAdmin(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	user := env.CreateUser(t, "ada@example.com", false, "0")
	env.CreateUser(t, "grace@example.com", false, "0")

	status, _ := env.Request(t, http.MethodGet, "/api/users", env.Token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.Request(t, http.MethodGet, "/api/users?search=grace", env.Token(t, admin), nil)
	require.Equal(t, http.StatusOK, status, body)

	users := controllertest.Data(t, body)["users"].([]interface{})
	require.Len(t, users, 1)
	first := users[0].(map[string]interface{})
	assert.Equal(t, "grace@example.com", first["email"])
	assert.NotContains(t, first, "password")
}

func TestDeleteUserPrunesLeaderboard(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	user := env.CreateUser(t, "ada@example.com", false, "0")
	adminToken := env.Token(t, admin)

	status, _ := env.Request(t, http.MethodPost, "/api/leaderboard/refresh", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var entries int64
	require.NoError(t, env.DB.Model(&models.LeaderboardEntry{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	require.EqualValues(t, 1, entries)

	status, _ = env.Request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.Request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, env.DB.Model(&models.LeaderboardEntry{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	assert.Zero(t, entries)

	status, _ = env.Request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// a deleted account can no longer authenticate against user routes
	status, _ = env.Request(t, http.MethodGet, "/api/user", env.Token(t, user), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
