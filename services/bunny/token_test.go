package bunny

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignPlaybackTokenIsDeterministic(t *testing.T) {
	a := SignPlaybackToken("key", "vid-1", 1700000000)
	b := SignPlaybackToken("key", "vid-1", 1700000000)
	assert.Equal(t, a, b)

	mac := hmac.New(sha256.New, []byte("key"))
	mac.Write([]byte("key/vid-11700000000"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil))+"1700000000", a)
}

func TestSignPlaybackTokenVariesWithInputs(t *testing.T) {
	base := SignPlaybackToken("key", "vid-1", 1700000000)
	assert.NotEqual(t, base, SignPlaybackToken("other", "vid-1", 1700000000))
	assert.NotEqual(t, base, SignPlaybackToken("key", "vid-2", 1700000000))
	assert.NotEqual(t, base, SignPlaybackToken("key", "vid-1", 1700000001))
}

func TestEmbedURL(t *testing.T) {
	got := EmbedURL("", "lib1", "vid-1", "tok")
	assert.Equal(t, "https://iframe.mediadelivery.net/embed/lib1/vid-1?token=tok", got)

	got = EmbedURL("https://player.example.com/embed/", "lib1", "vid-1", "tok")
	assert.Equal(t, "https://player.example.com/embed/lib1/vid-1?token=tok", got)
}
