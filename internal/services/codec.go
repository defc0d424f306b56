package services

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/desertthunder/mosaic/internal/shared"
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// DetectImage checks that data decodes as one of the registered image formats and returns its content type.
//
// Only the header is decoded.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty body", shared.ErrDecode)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}

	contentType := "image/" + format
	if _, ok := extensions[contentType]; !ok {
		contentType = http.DetectContentType(data)
	}
	return contentType, nil
}

// ExtensionFor returns the file extension for an image content type, or fallback when the type is unknown.
func ExtensionFor(contentType, fallback string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	if ext, ok := extensions[strings.TrimSpace(strings.ToLower(mediaType))]; ok {
		return ext
	}
	return fallback
}
