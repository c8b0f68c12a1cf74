package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     error
	}{
		{"valid mp4", "clip.mp4", "video/mp4", 1024, nil},
		{"valid by extension only", "clip.mov", "", 1024, nil},
		{"valid webm", "take2.webm", "", 1024, nil},
		{"uppercase extension", "CLIP.MP4", "", 1024, nil},
		{"empty file", "clip.mp4", "video/mp4", 0, ErrEmptyFile},
		{"negative size", "clip.mp4", "video/mp4", -1, ErrEmptyFile},
		{"too large", "clip.mp4", "video/mp4", MaxFileSize + 1, ErrFileTooLarge},
		{"at the size limit", "clip.mp4", "video/mp4", MaxFileSize, nil},
		{"filename too long", strings.Repeat("a", 256) + ".mp4", "video/mp4", 1024, ErrFilenameTooLong},
		{"not a video by type", "notes.pdf", "application/pdf", 1024, ErrNotVideo},
		{"not a video by extension", "notes.txt", "", 1024, ErrNotVideo},
		{"no extension no type", "clip", "", 1024, ErrNotVideo},
		{"declared type wins", "clip.mp4", "text/plain", 1024, ErrNotVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.contentType, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
