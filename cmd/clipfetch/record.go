package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"clipfetch/internal/archive"
	"clipfetch/internal/history"
	"clipfetch/internal/logging"
	"clipfetch/internal/notifications"
	"clipfetch/internal/services"
)

func newRequestID() string {
	return uuid.NewString()
}

// recordOutcome writes a history row for a finished or failed run. History
// failures are logged and never mask the run's own result.
func (c *commandContext) recordOutcome(ctx context.Context, rec *history.Record, runErr error) *history.Record {
	store, err := c.historyStore()
	if err != nil {
		logging.WithContext(ctx, c.loggerFor()).Warn("history unavailable", logging.Error(err))
		return nil
	}
	if store == nil {
		return nil
	}
	if runErr != nil {
		rec.Status = history.StatusFailed
		rec.Error = runErr.Error()
	} else {
		rec.Status = history.StatusSucceeded
	}
	if err := store.Add(ctx, rec); err != nil {
		logging.WithContext(ctx, c.loggerFor()).Warn("failed to record history", logging.Error(err))
		return nil
	}
	return rec
}

// notifyOutcome publishes a completion or failure event. Delivery problems
// are logged only.
func (c *commandContext) notifyOutcome(ctx context.Context, kind history.Kind, url, path string, runErr error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	event := notifications.EventDownloadCompleted
	payload := notifications.Payload{"kind": string(kind), "url": url}
	if runErr != nil {
		event = notifications.EventDownloadFailed
		payload["error"] = runErr.Error()
	} else {
		payload["file"] = filepath.Base(path)
	}
	if err := notifications.NewService(cfg).Publish(ctx, event, payload); err != nil {
		logging.WithContext(ctx, c.loggerFor()).Warn("notification failed", logging.Error(err))
	}
}

// archiveFile uploads path when archiving is enabled and returns the object
// key, or "" when archiving is off. The local copy is removed afterwards when
// delete_after_upload is set.
func (c *commandContext) archiveFile(ctx context.Context, path string, kind history.Kind, url string, rec *history.Record) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if !cfg.Archive.Enabled {
		return "", nil
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(c.loggerFor(), "archive"))

	uploader, err := newUploader(ctx, cfg.Archive)
	if err != nil {
		return "", err
	}
	metadata := map[string]string{
		"source-url": url,
		"kind":       string(kind),
	}
	key, err := archive.UploadFile(ctx, uploader, cfg.Archive.Prefix, path, metadata, c.now())
	if err != nil {
		return "", err
	}
	logger.Info("archived download", logging.FieldPath, path, "key", key)

	if rec != nil {
		if store, _ := c.historyStore(); store != nil {
			if err := store.SetArchiveKey(ctx, rec.ID, key); err != nil {
				logger.Warn("failed to store archive key", logging.Error(err))
			}
			rec.ArchiveKey = key
		}
	}

	if cfg.Archive.DeleteAfterUpload {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return key, services.Wrap(services.ErrTransient, "archive", "delete local copy", path, err)
		}
		logger.Info("removed local copy after upload", logging.FieldPath, path)
	}
	return key, nil
}
