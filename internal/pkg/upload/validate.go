package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

// MaxPhotoBytes caps accepted pet photos. Large uploads slow down the
// compositor without improving the 185x190 frame.
const MaxPhotoBytes = 10 << 20

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	// Note: SVG is intentionally excluded due to XSS risk without sanitization
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
}

// ValidatePhoto checks the provided filename (extension) and the first bytes
// against a whitelist of image types the certificate compositor can decode.
// Returns the detected mime or an ErrValidation error.
func ValidatePhoto(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: only JPG, JPEG, PNG, GIF and BMP photos are supported", apperrors.ErrValidation)
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", fmt.Errorf("%w: HTML content is not allowed", apperrors.ErrValidation)
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", fmt.Errorf("%w: SVG/XML uploads are not supported", apperrors.ErrValidation)
	}

	// Some encoders produce files sniffed as octet-stream; trust the extension then
	if detected == "application/octet-stream" && allowedExt[ext] {
		return detected, nil
	}

	if allowedMime[detected] {
		return detected, nil
	}

	return "", fmt.Errorf("%w: unsupported photo type %s", apperrors.ErrValidation, detected)
}
