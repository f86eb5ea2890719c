// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-converts assets as their sources change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/assetconv/internal/convert"
)

// AssetConverter is the subset of convert.Converter the watcher needs.
type AssetConverter interface {
	Handles(asset string) bool
	ConvertAsset(ctx context.Context, asset, basePath string) (convert.Outcome, error)
}

// Watcher converts assets under a base path whenever they are written.
type Watcher struct {
	conv     AssetConverter
	basePath string
	log      logrus.FieldLogger
}

// New creates a Watcher for basePath.
func New(conv AssetConverter, basePath string, log logrus.FieldLogger) *Watcher {
	return &Watcher{
		conv:     conv,
		basePath: basePath,
		log:      log.WithFields(logrus.Fields{"package": "watch", "base_path": basePath}),
	}
}

// Run watches basePath recursively until ctx is cancelled. Events are handled
// one at a time, so conversions never overlap. ready, when non-nil, is
// closed once all existing directories are being watched.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.basePath); err != nil {
		return err
	}
	w.log.Info("Watching for asset changes.")
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopped watching.")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Error("File watcher error.")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && !convert.SkipDir(info.Name()) {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.log.WithError(err).Warn("Failed to watch new directory.")
			}
		}
		return
	}

	rel, err := filepath.Rel(w.basePath, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !w.conv.Handles(rel) {
		return
	}

	out, err := w.conv.ConvertAsset(ctx, rel, w.basePath)
	if err != nil {
		w.log.WithError(err).WithField("asset", rel).Error("Failed to convert changed asset.")
		return
	}
	w.log.WithFields(logrus.Fields{"asset": rel, "result": out.Result, "status": out.Status}).Debug("Handled asset change.")
}

// addTree adds root and every non-skipped directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && convert.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	return nil
}
