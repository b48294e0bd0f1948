package weburl

import (
	"errors"
	"testing"

	"clipfetch/internal/services"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"http://example.com/video.mp4", true},
		{"ftp://host/file", true},
		{"", false},
		{"   ", false},
		{"not a url", false},
		{"/relative/path", false},
		{"https://", false},
		{"://missing-scheme", false},
	}
	for _, tt := range tests {
		err := Validate(tt.raw)
		if tt.ok && err != nil {
			t.Errorf("Validate(%q) unexpected error: %v", tt.raw, err)
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("Validate(%q) expected error", tt.raw)
				continue
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Errorf("Validate(%q) error %v does not wrap ErrValidation", tt.raw, err)
			}
		}
	}
}

func TestIsYouTube(t *testing.T) {
	tests := map[string]bool{
		"https://www.youtube.com/watch?v=abc": true,
		"https://m.youtube.com/shorts/x":      true,
		"https://youtu.be/abc":                true,
		"https://YOUTU.BE/abc":                true,
		"https://vimeo.com/123":               false,
		"https://example.com/youtube.com":     false,
		"%%%":                                 false,
	}
	for raw, want := range tests {
		if got := IsYouTube(raw); got != want {
			t.Errorf("IsYouTube(%q) = %v, want %v", raw, got, want)
		}
	}
}
