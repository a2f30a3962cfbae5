package authController_test

import (
	"coursehub/controllers/controllertest"
	"coursehub/models"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, env *controllertest.Env, email string) (int, map[string]interface{}) {
	return env.Request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":                  "Ada",
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
}

func login(t *testing.T, env *controllertest.Env, email, password string) (int, map[string]interface{}) {
	return env.Request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
}

func TestRegisterCreditsSignupBalances(t *testing.T) {
	env := controllertest.New(t)

	status, body := register(t, env, "Ada@Example.com")
	require.Equal(t, http.StatusCreated, status, body)

	user := controllertest.Data(t, body)["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.EqualValues(t, 10, user["points_balance"])
	assert.Equal(t, "10", user["wallet_balance"])
	assert.NotNil(t, user["email_verified_at"])

	status, _ = register(t, env, "ada@example.com")
	assert.Equal(t, http.StatusConflict, status)
}

func TestRegisterValidation(t *testing.T) {
	env := controllertest.New(t)

	status, body := env.Request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":                  "Ada",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "different",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	fields := body["data"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "password_confirmation")
}

func TestLoginAndLogout(t *testing.T) {
	env := controllertest.New(t)
	env.CreateUser(t, "ada@example.com", false, "0")

	status, _ := login(t, env, "ada@example.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := login(t, env, "ada@example.com", controllertest.Password)
	require.Equal(t, http.StatusOK, status, body)
	token := controllertest.Data(t, body)["token"].(string)
	require.NotEmpty(t, token)

	status, _ = env.Request(t, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.Request(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Request(t, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginRecordsHistory(t *testing.T) {
	env := controllertest.New(t)
	user := env.CreateUser(t, "ada@example.com", false, "0")

	status, _ := login(t, env, "ada@example.com", controllertest.Password)
	require.Equal(t, http.StatusOK, status)

	status, body := env.Request(t, http.MethodGet, "/api/auth/login/history", env.Token(t, user), nil)
	require.Equal(t, http.StatusOK, status)

	history := controllertest.Data(t, body)["loginTracking"].([]interface{})
	assert.Len(t, history, 1)
}

func TestLoginRejectsUnverifiedEmail(t *testing.T) {
	env := controllertest.New(t)
	user := env.CreateUser(t, "ada@example.com", false, "0")
	require.NoError(t, env.DB.Model(&user).Update("email_verified_at", nil).Error)

	status, _ := login(t, env, "ada@example.com", controllertest.Password)
	assert.Equal(t, http.StatusForbidden, status)
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f-]{36})`)

func TestForgotAndResetPassword(t *testing.T) {
	env := controllertest.New(t)
	env.CreateUser(t, "ada@example.com", false, "0")

	status, _ := env.Request(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.Request(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool { return len(env.Mailer.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
	mail := env.Mailer.Sent()[0]
	assert.Equal(t, "ada@example.com", mail.To)

	match := tokenPattern.FindStringSubmatch(mail.HTML)
	require.Len(t, match, 2)

	var stored models.PasswordResetToken
	require.NoError(t, env.DB.Where("email = ?", "ada@example.com").First(&stored).Error)
	assert.NotEqual(t, match[1], stored.TokenHash)

	reset := map[string]string{
		"token":                 match[1],
		"email":                 "ada@example.com",
		"password":              "new-password",
		"password_confirmation": "new-password",
	}
	status, _ = env.Request(t, http.MethodPost, "/api/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, status)

	// single use
	status, _ = env.Request(t, http.MethodPost, "/api/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = login(t, env, "ada@example.com", "new-password")
	assert.Equal(t, http.StatusOK, status)
}
