package utils

import (
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var allowedVideoTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/x-matroska",
	"video/webm",
	"video/x-msvideo",
}

var ErrUnsupportedVideo = errors.New("file must be a video of type mp4, mov, mkv, webm or avi")

// DetectVideoType sniffs the head of an upload and rewinds it.
func DetectVideoType(file io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if !mimetype.EqualsAny(mtype.String(), allowedVideoTypes...) {
		return mtype.String(), ErrUnsupportedVideo
	}
	return mtype.String(), nil
}
