package ytdlp

import (
	"fmt"
	"strings"

	"clipfetch/internal/services"
)

// Resolution is a coarse video quality target.
type Resolution string

const (
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	ResolutionBest  Resolution = "best"

	DefaultResolution = Resolution720p
)

var formatSelectors = map[Resolution]string{
	Resolution480p:  "worst[height>=360]/best[height<=480]/worst",
	Resolution720p:  "best[height<=720]/best",
	Resolution1080p: "best[height<=1080]/best",
	ResolutionBest:  "best",
}

// Resolutions lists the supported values in ascending quality.
func Resolutions() []Resolution {
	return []Resolution{Resolution480p, Resolution720p, Resolution1080p, ResolutionBest}
}

// ParseResolution accepts 480p, 720p, 1080p, or best (case-insensitive). An
// empty value yields DefaultResolution.
func ParseResolution(value string) (Resolution, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return DefaultResolution, nil
	}
	res := Resolution(trimmed)
	if _, ok := formatSelectors[res]; !ok {
		return "", services.Wrap(services.ErrValidation, component, "parse resolution",
			fmt.Sprintf("unsupported resolution %q (expected 480p, 720p, 1080p, or best)", value), nil)
	}
	return res, nil
}

// FormatSelector returns the yt-dlp -f expression for the resolution.
func (r Resolution) FormatSelector() (string, error) {
	selector, ok := formatSelectors[r]
	if !ok {
		return "", services.Wrap(services.ErrValidation, component, "format selector",
			fmt.Sprintf("unsupported resolution %q", string(r)), nil)
	}
	return selector, nil
}

func (r Resolution) String() string {
	return string(r)
}
