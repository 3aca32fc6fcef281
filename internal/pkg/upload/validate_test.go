package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestValidatePhotoPNG(t *testing.T) {
	mime, err := ValidatePhoto("pet.png", pngHead)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestValidatePhotoJPEG(t *testing.T) {
	head := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'}
	mime, err := ValidatePhoto("pet.JPG", head)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestValidatePhotoRejectsExtension(t *testing.T) {
	_, err := ValidatePhoto("pet.svg", pngHead)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidatePhotoRejectsSniffedHTML(t *testing.T) {
	_, err := ValidatePhoto("pet.png", []byte("<!DOCTYPE html><html></html>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidatePhotoAllowsOctetStreamByExtension(t *testing.T) {
	mime, err := ValidatePhoto("pet.bmp", []byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mime)
}
