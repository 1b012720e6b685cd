package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/logger"
	"github.com/quarrylabs/quarry/internal/normalisers"
)

var watchMode string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and index text files as they change",
	Long: `Watches the directory for created and modified text files and keeps
the index in sync. A rewritten file replaces its previous version in
the index. Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "chunking", "c", "hybrid", "chunking mode: hybrid or semantic")
	rootCmd.AddCommand(watchCmd)
}

// watchedExtensions are the file types the watcher ingests.
var watchedExtensions = map[string]struct{}{
	".md":   {},
	".txt":  {},
	".html": {},
	".htm":  {},
	".eml":  {},
	".docx": {},
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	mode, err := parseSegmentMode(watchMode)
	if err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	return watchLoop(ctx, cmd, watcher, mode)
}

// watchLoop processes filesystem events until the context is cancelled.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, mode domain.SegmentMode) error {
	// Tracks which document each file produced so a rewrite replaces
	// the old version instead of accumulating duplicates.
	indexed := make(map[string]string)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, cmd, event, mode, indexed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func handleWatchEvent(
	ctx context.Context, cmd *cobra.Command,
	event fsnotify.Event, mode domain.SegmentMode, indexed map[string]string,
) {
	path := event.Name

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if docID, ok := indexed[path]; ok {
			delete(indexed, path)
			if err := ingestService.Remove(ctx, docID); err != nil {
				logger.Warn("Removing %s failed: %v", path, err)
				return
			}
			cmd.Printf("Removed %s\n", filepath.Base(path))
		}
		return
	}

	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if _, ok := watchedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s failed: %v", path, err)
		return
	}

	result, err := normalisers.ForPath(path).Normalise(raw, path)
	if err != nil {
		logger.Warn("Normalising %s failed: %v", path, err)
		return
	}
	if strings.TrimSpace(result.Content) == "" {
		return
	}

	// A rewrite replaces the previous version.
	if docID, ok := indexed[path]; ok {
		if err := ingestService.Remove(ctx, docID); err != nil {
			logger.Warn("Replacing %s failed: %v", path, err)
		}
		delete(indexed, path)
	}

	doc, err := ingestService.Ingest(ctx, result.Title, result.Content, mode)
	if err != nil {
		logger.Warn("Indexing %s failed: %v", path, err)
		return
	}

	indexed[path] = doc.ID
	cmd.Printf("Indexed %s as %s\n", filepath.Base(path), doc.ID)
}
