package bunny

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const DefaultEmbedURL = "https://iframe.mediadelivery.net/embed"

// SignPlaybackToken returns hex(HMAC-SHA256(signingKey, signingKey+"/"+videoID+expires))
// followed by the decimal expiry timestamp.
func SignPlaybackToken(signingKey, videoID string, expires int64) string {
	exp := strconv.FormatInt(expires, 10)

	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(signingKey + "/" + videoID + exp))

	return hex.EncodeToString(mac.Sum(nil)) + exp
}

// EmbedURL builds the iframe player URL for a video.
func EmbedURL(base, libraryID, videoID, token string) string {
	if base == "" {
		base = DefaultEmbedURL
	}
	return strings.TrimRight(base, "/") + "/" + libraryID + "/" + videoID + "?token=" + url.QueryEscape(token)
}
