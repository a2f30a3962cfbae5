package bunny

import (
	"bytes"
	"context"
	"coursehub/apperrors"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Credentials{LibraryID: "lib1", APIKey: "secret"}, WithBaseURL(srv.URL), WithTimeout(2*time.Second))
}

func TestCreateVideo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/lib1/videos", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("AccessKey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Intro", body["title"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guid":"abc-123","title":"Intro","status":0,"videoLibraryId":1}`))
	})

	video, err := client.CreateVideo(context.Background(), "Intro")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", video.GUID)
	assert.False(t, video.IsReady())
	assert.JSONEq(t, `{"guid":"abc-123","title":"Intro","status":0,"videoLibraryId":1}`, string(video.Raw))
}

func TestGetVideoReady(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/library/lib1/videos/abc-123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guid":"abc-123","status":4,"length":125}`))
	})

	video, err := client.GetVideo(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.True(t, video.IsReady())
	require.NotNil(t, video.Length)
	assert.Equal(t, int64(125), *video.Length)
}

func TestUpdateVideoSendsOnlySetFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"isPublic":true}`, string(raw))
		w.WriteHeader(http.StatusOK)
	})

	public := true
	raw, err := client.UpdateVideo(context.Background(), "abc-123", VideoUpdate{IsPublic: &public})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDeleteVideo(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/library/lib1/videos/abc-123", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteVideo(context.Background(), "abc-123"))
	assert.True(t, called)
}

func TestUploadBinaryStreamsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/library/lib1/videos/abc-123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("AccessKey"))
		assert.Equal(t, int64(11), r.ContentLength)
		raw, _ := io.ReadAll(r.Body)
		assert.Equal(t, "video-bytes", string(raw))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	err := client.UploadBinary(context.Background(), "abc-123", strings.NewReader("video-bytes"), 11)
	require.NoError(t, err)
}

// gatedReader hands out head, then blocks until gate closes before handing
// out tail. It has no length or seek support.
type gatedReader struct {
	head, tail []byte
	gate       <-chan struct{}
	opened     bool
}

func (r *gatedReader) Read(p []byte) (int, error) {
	if len(r.head) > 0 {
		n := copy(p, r.head)
		r.head = r.head[n:]
		return n, nil
	}
	if !r.opened {
		select {
		case <-r.gate:
			r.opened = true
		case <-time.After(5 * time.Second):
			return 0, errors.New("server never saw the first bytes")
		}
	}
	if len(r.tail) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.tail)
	r.tail = r.tail[n:]
	return n, nil
}

func TestUploadBinarySendsBeforeBodyIsExhausted(t *testing.T) {
	const chunk = 1 << 20
	gate := make(chan struct{})
	var once sync.Once
	var received atomic.Int64

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(2*chunk), r.ContentLength)
		buf := make([]byte, 32<<10)
		for {
			n, err := r.Body.Read(buf)
			if received.Add(int64(n)) >= chunk/2 {
				once.Do(func() { close(gate) })
			}
			if err != nil {
				break
			}
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	body := &gatedReader{
		head: bytes.Repeat([]byte("a"), chunk),
		tail: bytes.Repeat([]byte("b"), chunk),
		gate: gate,
	}
	require.NoError(t, client.UploadBinary(context.Background(), "abc-123", body, 2*chunk))
	assert.Equal(t, int64(2*chunk), received.Load())
}

func TestUploadBinaryUnknownSizeIsChunked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"chunked"}, r.TransferEncoding)
		raw, _ := io.ReadAll(r.Body)
		assert.Equal(t, "video-bytes", string(raw))
		w.WriteHeader(http.StatusOK)
	})

	body := io.MultiReader(strings.NewReader("video-"), strings.NewReader("bytes"))
	require.NoError(t, client.UploadBinary(context.Background(), "abc-123", body, -1))
}

func TestUploadBinaryRejectionBecomesProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Video already uploaded"}`))
	})

	err := client.UploadBinary(context.Background(), "abc-123", strings.NewReader("x"), 1)
	var providerErr *apperrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
	assert.Equal(t, "Video already uploaded", providerErr.Message)
}

func TestPoolSharesConnectionsAcrossLibraries(t *testing.T) {
	var mu sync.Mutex
	newConns := 0
	seen := map[string]string{}

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.Header.Get("AccessKey")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guid":"abc","status":4}`))
	}))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			mu.Lock()
			newConns++
			mu.Unlock()
		}
	}
	srv.Start()
	t.Cleanup(srv.Close)

	pool := NewPool(WithBaseURL(srv.URL))
	for i := 0; i < 20; i++ {
		creds := Credentials{LibraryID: "lib-a", APIKey: "key-a"}
		if i%2 == 1 {
			creds = Credentials{LibraryID: "lib-b", APIKey: "key-b"}
		}
		_, err := pool.Client(creds).GetVideo(context.Background(), "abc")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, newConns)
	assert.Equal(t, "key-a", seen["/library/lib-a/videos/abc"])
	assert.Equal(t, "key-b", seen["/library/lib-b/videos/abc"])
}

func TestNonSuccessBecomesProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid AccessKey","statusCode":401}`))
	})

	_, err := client.CreateVideo(context.Background(), "x")
	var providerErr *apperrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusUnauthorized, providerErr.StatusCode)
	assert.Equal(t, "Invalid AccessKey", providerErr.Message)
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}

func TestTransportFailureBecomesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Credentials{LibraryID: "lib1", APIKey: "k"}, WithBaseURL(srv.URL))

	err := client.DeleteVideo(context.Background(), "abc")
	var providerErr *apperrors.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Zero(t, providerErr.StatusCode)
}

func TestResolveCredentials(t *testing.T) {
	defaults := Credentials{LibraryID: "default-lib", APIKey: "default-key"}
	lib, key, blank := "course-lib", "course-key", ""

	assert.Equal(t, Credentials{"course-lib", "course-key"}, ResolveCredentials(&lib, &key, defaults))
	assert.Equal(t, Credentials{"course-lib", "default-key"}, ResolveCredentials(&lib, nil, defaults))
	assert.Equal(t, Credentials{"course-lib", "default-key"}, ResolveCredentials(&lib, &blank, defaults))
	assert.Equal(t, defaults, ResolveCredentials(nil, &key, defaults))
	assert.Equal(t, defaults, ResolveCredentials(&blank, nil, defaults))
}
