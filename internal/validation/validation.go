// Package validation checks upload payloads before any network activity.
package validation

import (
	"errors"
	"strings"
)

const (
	MaxFileSize    = 500 * 1024 * 1024 // 500MB
	MaxFilenameLen = 255
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large - maximum 500MB allowed")
	ErrFilenameTooLong = errors.New("filename too long - maximum 255 characters")
	ErrNotVideo        = errors.New("not a video file - only mp4, mov, webm, avi, mkv allowed")
)

var videoExtTypes = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
}

// ValidateUpload rejects payloads that are not video content. The
// declared content type wins; when absent it is guessed from the
// filename extension.
func ValidateUpload(filename, contentType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	if len(filename) > MaxFilenameLen {
		return ErrFilenameTooLong
	}

	if contentType == "" {
		contentType = guessContentType(filename)
	}
	if !strings.HasPrefix(contentType, "video/") {
		return ErrNotVideo
	}
	return nil
}

func guessContentType(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return "application/octet-stream"
	}
	ext := strings.ToLower(filename[idx+1:])
	if ct, ok := videoExtTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
