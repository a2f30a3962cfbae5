package controllers_test

import (
	"coursehub/controllers/controllertest"
	"coursehub/models"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCourse(t *testing.T, env *controllertest.Env, adminToken, price string) uint {
	t.Helper()
	status, body := env.Request(t, http.MethodPost, "/api/courses", adminToken, map[string]interface{}{
		"title": "Go in Production",
		"price": price,
	})
	require.Equal(t, http.StatusCreated, status, body)
	course := controllertest.Data(t, body)["course"].(map[string]interface{})
	return uint(course["ID"].(float64))
}

func TestCourseWritesRequireAdmin(t *testing.T) {
	env := controllertest.New(t)
	user := env.CreateUser(t, "user@example.com", false, "0")

	status, _ := env.Request(t, http.MethodPost, "/api/courses", env.Token(t, user), map[string]interface{}{
		"title": "Nope",
		"price": "1.00",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Request(t, http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateCourseValidatesPrice(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")

	status, body := env.Request(t, http.MethodPost, "/api/courses", env.Token(t, admin), map[string]interface{}{
		"title": "Negative",
		"price": "-1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["data"], "price")
}

func TestListCoursesPaginates(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	token := env.Token(t, admin)
	for i := 0; i < 3; i++ {
		createCourse(t, env, token, "5.00")
	}

	status, body := env.Request(t, http.MethodGet, "/api/courses?per_page=2", token, nil)
	require.Equal(t, http.StatusOK, status)

	data := controllertest.Data(t, body)
	assert.Len(t, data["courses"], 2)
	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["last_page"])
}

func TestPurchaseCourse(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	buyer := env.CreateUser(t, "buyer@example.com", false, "50")
	poor := env.CreateUser(t, "poor@example.com", false, "5")

	courseID := createCourse(t, env, env.Token(t, admin), "19.50")
	path := fmt.Sprintf("/api/courses/%d/purchase", courseID)

	status, body := env.Request(t, http.MethodPost, path, env.Token(t, buyer), nil)
	require.Equal(t, http.StatusOK, status, body)

	status, _ = env.Request(t, http.MethodPost, path, env.Token(t, buyer), nil)
	assert.Equal(t, http.StatusConflict, status)

	var reloaded models.User
	require.NoError(t, env.DB.First(&reloaded, buyer.ID).Error)
	assert.Equal(t, "30.5", reloaded.WalletBalance.String())

	status, body = env.Request(t, http.MethodPost, path, env.Token(t, poor), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient wallet balance", body["message"])

	status, _ = env.Request(t, http.MethodPost, "/api/courses/9999/purchase", env.Token(t, buyer), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProgressRequiresPurchase(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	buyer := env.CreateUser(t, "buyer@example.com", false, "50")
	token := env.Token(t, buyer)

	courseID := createCourse(t, env, env.Token(t, admin), "10.00")
	progress := fmt.Sprintf("/api/courses/%d/progress", courseID)

	status, _ := env.Request(t, http.MethodPost, progress, token, map[string]interface{}{"progress_percentage": 40})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Request(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/purchase", courseID), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Request(t, http.MethodPost, progress, token, map[string]interface{}{"progress_percentage": 140})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := env.Request(t, http.MethodPost, progress, token, map[string]interface{}{"progress_percentage": 40})
	require.Equal(t, http.StatusOK, status)
	enrollment := controllertest.Data(t, body)["enrollment"].(map[string]interface{})
	assert.EqualValues(t, 40, enrollment["progress_percentage"])
}

// fakeBunny answers video creation with sequential guids.
func fakeBunny(t *testing.T) *httptest.Server {
	var created int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("AccessKey") != "key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/library/lib-1/videos" {
			n := atomic.AddInt32(&created, 1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"guid":   fmt.Sprintf("guid-%d", n),
				"status": 0,
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVideoLifecycleThroughAPI(t *testing.T) {
	srv := fakeBunny(t)
	env := controllertest.New(t, controllertest.Options{BunnyURL: srv.URL})

	admin := env.CreateUser(t, "admin@example.com", true, "0")
	buyer := env.CreateUser(t, "buyer@example.com", false, "50")
	adminToken := env.Token(t, admin)
	buyerToken := env.Token(t, buyer)

	courseID := createCourse(t, env, adminToken, "10.00")

	status, body := env.Request(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/course-sections", courseID), adminToken, map[string]interface{}{
		"title":       "Basics",
		"order_index": 0,
	})
	require.Equal(t, http.StatusCreated, status, body)
	sectionID := uint(controllertest.Data(t, body)["section"].(map[string]interface{})["ID"].(float64))
	videosPath := fmt.Sprintf("/api/courses/%d/course-sections/%d/videos", courseID, sectionID)

	var videoIDs []uint
	for i, title := range []string{"Intro", "Setup"} {
		status, body = env.Request(t, http.MethodPost, videosPath, adminToken, map[string]interface{}{
			"title":       title,
			"order_index": i,
			"duration":    30,
		})
		require.Equal(t, http.StatusCreated, status, body)
		video := controllertest.Data(t, body)["video"].(map[string]interface{})
		assert.Equal(t, "uploading", video["status"])
		assert.Equal(t, fmt.Sprintf("guid-%d", i+1), video["bunny_video_guid"])
		videoIDs = append(videoIDs, uint(video["id"].(float64)))
	}

	status, _ = env.Request(t, http.MethodGet, videosPath, buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Request(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/purchase", courseID), buyerToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.Request(t, http.MethodGet, fmt.Sprintf("%s/%d", videosPath, videoIDs[0]), buyerToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	playback := controllertest.Data(t, body)["video"].(map[string]interface{})["playback"].(map[string]interface{})
	assert.Equal(t, "lib-1", playback["library_id"])
	assert.NotEmpty(t, playback["token"])
	assert.True(t, strings.HasPrefix(playback["iframe_url"].(string), "https://iframe.example/embed/lib-1/guid-1?token="))

	status, body = env.Request(t, http.MethodPut, videosPath+"/reorder", adminToken, []map[string]interface{}{
		{"id": videoIDs[0], "order_index": 1},
		{"id": videoIDs[1], "order_index": 0},
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.Request(t, http.MethodGet, videosPath, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	list := controllertest.Data(t, body)["videos"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "Setup", list[0].(map[string]interface{})["title"])

	status, body = env.Request(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", courseID), buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	course := controllertest.Data(t, body)["course"].(map[string]interface{})
	assert.EqualValues(t, 60, course["total_duration"])
}

func TestDashboardStats(t *testing.T) {
	env := controllertest.New(t)
	admin := env.CreateUser(t, "admin@example.com", true, "0")
	buyer := env.CreateUser(t, "buyer@example.com", false, "50")

	courseID := createCourse(t, env, env.Token(t, admin), "12.50")
	status, _ := env.Request(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/purchase", courseID), env.Token(t, buyer), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Request(t, http.MethodGet, "/api/admin/dashboard/stats", env.Token(t, buyer), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.Request(t, http.MethodGet, "/api/admin/dashboard/stats", env.Token(t, admin), nil)
	require.Equal(t, http.StatusOK, status, body)
	data := controllertest.Data(t, body)
	assert.EqualValues(t, 2, data["total_users"])
	assert.EqualValues(t, 1, data["total_enrollments"])
	assert.EqualValues(t, 1, data["purchases_today"])
	assert.Equal(t, "12.50", data["revenue_today"])
}
