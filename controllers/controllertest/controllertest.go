// Package controllertest boots the full API against an in-memory database
// for handler tests.
package controllertest

import (
	"bytes"
	"context"
	"coursehub/config"
	"coursehub/database"
	"coursehub/database/databasetest"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/routers"
	"coursehub/services"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "password123"

// Mail is one captured message.
type Mail struct {
	To, Subject, HTML string
}

// RecordingMailer keeps every message instead of sending it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *RecordingMailer) Send(_ context.Context, to, _, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *RecordingMailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}

type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Mailer *RecordingMailer
}

// Options tweak the environment before routes are mounted.
type Options struct {
	BunnyURL string
}

func New(t *testing.T, opts ...Options) *Env {
	t.Helper()

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	config.AppConfig = &config.Config{
		AppURL:              "http://localhost:3000",
		JWTKey:              "test-secret",
		SaltRound:           bcrypt.MinCost,
		BunnyLibraryID:      "lib-1",
		BunnyAPIKey:         "key-1",
		BunnySigningKey:     "signing-key",
		BunnyEmbedURL:       "https://iframe.example/embed",
		PlaybackTokenTTL:    3600,
		UploadMaxBytes:      10 * 1024 * 1024,
		SignupWalletBalance: "10",
		SignupPointsBalance: 10,
	}

	db := databasetest.Open(t)
	database.Database = database.DbInstance{Db: db}

	log := logrus.New()
	log.SetOutput(io.Discard)

	mailer := &RecordingMailer{}
	svcOpts := services.OptionsFromConfig(config.AppConfig)
	svcOpts.Mailer = mailer
	svcOpts.BunnyURL = o.BunnyURL
	services.Init(db, log, svcOpts)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	routers.Setup(app, int64(config.AppConfig.UploadMaxBytes))

	return &Env{App: app, DB: db, Mailer: mailer}
}

// CreateUser stores a verified account with the given wallet balance.
func (e *Env) CreateUser(t *testing.T, email string, admin bool, wallet string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:          email,
		Email:         email,
		Password:      string(hash),
		IsAdmin:       admin,
		WalletBalance: decimal.RequireFromString(wallet),
	}
	verified := time.Now()
	user.EmailVerifiedAt = &verified
	require.NoError(t, e.DB.Create(&user).Error)
	return user
}

func (e *Env) Token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := middleware.GenerateJWT(user.ID, user.Name, user.Email, user.IsAdmin)
	require.NoError(t, err)
	return token
}

// Request sends a JSON request and decodes the response envelope.
func (e *Env) Request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.Do(t, req)
}

func (e *Env) Do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	}
	return resp.StatusCode, envelope
}

// Data returns the data object of an envelope.
func Data(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "envelope has no data object: %v", envelope)
	return data
}
