package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipfetch/internal/config"
	"clipfetch/internal/history"
	"clipfetch/internal/services"
	"clipfetch/internal/textutil"
	"clipfetch/internal/weburl"
	"clipfetch/internal/ytdlp"
)

type downloadView struct {
	HistoryID  string `json:"history_id,omitempty"`
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	Resolution string `json:"resolution,omitempty"`
	Path       string `json:"path"`
	FileName   string `json:"file_name"`
	Dir        string `json:"dir"`
	SizeBytes  int64  `json:"size_bytes"`
	Fallback   bool   `json:"fallback"`
	ArchiveKey string `json:"archive_key,omitempty"`
	Summary    string `json:"summary"`
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var resolution string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			value := strings.TrimSpace(resolution)
			if value == "" {
				value = cfg.YTDLP.DefaultResolution
			}
			res, err := ytdlp.ParseResolution(value)
			if err != nil {
				return err
			}
			return runDownload(cmd, ctx, history.KindVideo, args[0], res.String(), jsonOut,
				func(runCtx context.Context, client *ytdlp.Client) (*ytdlp.Download, error) {
					return client.DownloadVideo(runCtx, args[0], res)
				})
		},
	}
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "", fmt.Sprintf("Video resolution (%s)", joinResolutions()))
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var format string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audio <url>",
		Short: "Download the audio track of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			audioFormat := strings.TrimSpace(format)
			if audioFormat == "" {
				audioFormat = cfg.YTDLP.AudioFormat
			}
			return runDownload(cmd, ctx, history.KindAudio, args[0], "", jsonOut,
				func(runCtx context.Context, client *ytdlp.Client) (*ytdlp.Download, error) {
					return client.DownloadAudio(runCtx, args[0], audioFormat)
				})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Audio format passed to yt-dlp --audio-format (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func runDownload(
	cmd *cobra.Command,
	ctx *commandContext,
	kind history.Kind,
	url string,
	resolution string,
	jsonOut bool,
	fetch func(context.Context, *ytdlp.Client) (*ytdlp.Download, error),
) error {
	client, err := ctx.client()
	if err != nil {
		return err
	}
	runCtx := services.WithURL(ctx.commandCtx(cmd), url)
	ctx.loggerFor().Debug("starting download", "kind", string(kind), "youtube", weburl.IsYouTube(url))

	dl, runErr := fetch(runCtx, client)
	if errors.Is(runErr, services.ErrValidation) {
		return runErr
	}
	rec := &history.Record{Kind: kind, URL: url, Resolution: resolution}
	if dl != nil {
		rec.Path = dl.Path
		rec.SizeBytes = dl.SizeBytes
	}
	rec = ctx.recordOutcome(runCtx, rec, runErr)
	if runErr != nil {
		ctx.notifyOutcome(runCtx, kind, url, "", runErr)
		return runErr
	}
	ctx.notifyOutcome(runCtx, kind, url, dl.Path, nil)

	key, err := ctx.archiveFile(runCtx, dl.Path, kind, url, rec)
	if err != nil {
		return err
	}

	if jsonOut {
		view := downloadView{
			Kind:       string(dl.Kind),
			URL:        dl.URL,
			Resolution: resolution,
			Path:       dl.Path,
			FileName:   dl.FileName,
			Dir:        dl.Dir,
			SizeBytes:  dl.SizeBytes,
			Fallback:   dl.Fallback,
			ArchiveKey: key,
			Summary:    dl.Summary(),
		}
		if rec != nil {
			view.HistoryID = rec.ID
		}
		return writeJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, dl.Summary())
	if key != "" {
		fmt.Fprintf(out, "Archived as %s\n", key)
	}
	return nil
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Fetch subtitles and print them as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			url := args[0]
			language := strings.TrimSpace(lang)
			if language == "" {
				language = cfg.YTDLP.SubtitleLanguage
			}
			target, err := resolveOutputPath(outputPath, "txt")
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			runCtx := services.WithURL(ctx.commandCtx(cmd), url)
			transcript, runErr := client.Transcript(runCtx, url, language)
			if errors.Is(runErr, services.ErrValidation) {
				return runErr
			}
			if runErr == nil && target != "" {
				if err := os.WriteFile(target, []byte(transcript.Text+"\n"), 0o644); err != nil {
					runErr = services.Wrap(services.ErrConfiguration, "cli", "write transcript", target, err)
				}
			}
			rec := &history.Record{Kind: history.KindTranscript, URL: url, Path: target}
			if runErr == nil {
				rec.SizeBytes = int64(len(transcript.Text))
			}
			rec = ctx.recordOutcome(runCtx, rec, runErr)
			if target != "" || runErr != nil {
				ctx.notifyOutcome(runCtx, history.KindTranscript, url, target, runErr)
			}
			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if target == "" {
				fmt.Fprintln(out, transcript.Text)
				return nil
			}
			key, err := ctx.archiveFile(runCtx, target, history.KindTranscript, url, rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Transcript (%s) saved to %s\n", transcript.Language, target)
			if key != "" {
				fmt.Fprintf(out, "Archived as %s\n", key)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Subtitle language tag (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to this file instead of stdout")
	return cmd
}

// resolveOutputPath expands value and sanitizes its file name. A value naming
// an existing directory, or ending in a separator, gets a generated name.
func resolveOutputPath(value, ext string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "cli", "resolve --output", value, err)
	}
	dir, name := filepath.Split(expanded)
	if info, statErr := os.Stat(expanded); statErr == nil && info.IsDir() {
		dir, name = expanded, ""
	}
	if name == "" {
		name, err = textutil.RandomFilename(ext)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "cli", "resolve --output", "generate file name", err)
		}
	}
	name = textutil.SanitizeFilename(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "cli", "resolve --output", "file name is empty after sanitizing", nil)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "cli", "resolve --output", "create parent directory", err)
	}
	return filepath.Join(dir, name), nil
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show metadata for a video without downloading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			info, err := client.Metadata(ctx.commandCtx(cmd), args[0])
			if err != nil {
				return err
			}
			switch format {
			case outputJSON:
				return writeJSON(cmd, info)
			case outputYAML:
				return writeYAML(cmd, info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFields(videoInfoFields(args[0], info)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func videoInfoFields(url string, info *ytdlp.VideoInfo) [][2]string {
	fields := [][2]string{
		{"ID", info.ID},
		{"Title", info.Title},
		{"Uploader", info.Uploader},
		{"Channel", info.Channel},
		{"Duration", formatDuration(info.Duration)},
		{"Uploaded", info.UploadDate},
		{"Views", formatCount(info.ViewCount)},
		{"Likes", formatCount(info.LikeCount)},
		{"Extractor", info.Extractor},
		{"YouTube", yesNo(weburl.IsYouTube(url))},
		{"URL", info.WebpageURL},
	}
	if info.Width > 0 && info.Height > 0 {
		fields = append(fields, [2]string{"Dimensions", fmt.Sprintf("%dx%d", info.Width, info.Height)})
	}
	return fields
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return (time.Duration(seconds) * time.Second).String()
}

func formatCount(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func joinResolutions() string {
	values := ytdlp.Resolutions()
	parts := make([]string, len(values))
	for i, r := range values {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
