package ytdlp

import (
	"context"
	"encoding/json"
	"strings"

	"clipfetch/internal/services"
	"clipfetch/internal/weburl"
)

// VideoInfo is the subset of yt-dlp's --dump-json document clipfetch reports.
type VideoInfo struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Uploader    string  `json:"uploader,omitempty" yaml:"uploader,omitempty"`
	Channel     string  `json:"channel,omitempty" yaml:"channel,omitempty"`
	Duration    float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	UploadDate  string  `json:"upload_date,omitempty" yaml:"upload_date,omitempty"`
	ViewCount   int64   `json:"view_count,omitempty" yaml:"view_count,omitempty"`
	LikeCount   int64   `json:"like_count,omitempty" yaml:"like_count,omitempty"`
	WebpageURL  string  `json:"webpage_url,omitempty" yaml:"webpage_url,omitempty"`
	Extractor   string  `json:"extractor_key,omitempty" yaml:"extractor,omitempty"`
	Extension   string  `json:"ext,omitempty" yaml:"ext,omitempty"`
	Width       int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int     `json:"height,omitempty" yaml:"height,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Metadata asks yt-dlp to describe url without downloading it.
func (c *Client) Metadata(ctx context.Context, url string) (*VideoInfo, error) {
	const operation = "metadata"
	if err := weburl.Validate(url); err != nil {
		return nil, err
	}
	ctx = services.WithURL(ctx, url)
	output, err := c.run(ctx, operation, []string{"--dump-json", "--skip-download", "--no-warnings", url})
	if err != nil {
		return nil, err
	}

	// Combined output may still carry stderr noise after the JSON document.
	start := strings.Index(output, "{")
	if start < 0 {
		return nil, services.Wrap(services.ErrExternalTool, component, operation, "yt-dlp printed no JSON", nil)
	}
	var info VideoInfo
	if err := json.NewDecoder(strings.NewReader(output[start:])).Decode(&info); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, operation, "decode yt-dlp JSON", err)
	}
	return &info, nil
}

// Version returns the installed yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	output, err := c.run(ctx, "version", []string{"--version"})
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(output)
	if idx := strings.IndexByte(version, '\n'); idx >= 0 {
		version = strings.TrimSpace(version[:idx])
	}
	if version == "" {
		return "", services.Wrap(services.ErrExternalTool, component, "version", "yt-dlp printed no version", nil)
	}
	return version, nil
}
