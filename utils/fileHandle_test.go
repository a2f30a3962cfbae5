package utils

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVideoTypeAcceptsMP4AndRewinds(t *testing.T) {
	head := []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
	file := bytes.NewReader(append(head, make([]byte, 64)...))

	mtype, err := DetectVideoType(file)
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", mtype)

	pos, err := file.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestDetectVideoTypeRejectsText(t *testing.T) {
	_, err := DetectVideoType(bytes.NewReader([]byte("just some notes, not a video")))
	assert.ErrorIs(t, err, ErrUnsupportedVideo)
}
