// Package watcher ingests PDFs dropped into watched directories.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/fileid"
	"github.com/hyperjump/ragpipe/internal/models"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Ingester accepts a PDF for extraction and storage.
type Ingester interface {
	AddPDFDocument(ctx context.Context, in models.PDFInput) (models.Document, error)
}

// Result describes one ingestion attempt triggered by the watcher.
type Result struct {
	Path     string
	Document models.Document
	Err      error
}

// Watcher watches directories and ingests matching files once writes settle.
type Watcher struct {
	roots      []string
	extensions []string
	recursive  bool
	outputDir  string
	outputReal string // resolved outputDir, skipped while watching
	ingester   Ingester
	onResult   func(Result)
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	pending  map[string]*time.Timer
	ctx      context.Context
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for ingestion and debug events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must stay quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithResultHook is called after every ingestion attempt.
func WithResultHook(fn func(Result)) Option {
	return func(w *Watcher) { w.onResult = fn }
}

// New returns a watcher for cfg that hands matching files to ingester.
func New(cfg config.WatchConfig, ingester Ingester, opts ...Option) *Watcher {
	w := &Watcher{
		roots:      append([]string(nil), cfg.Directories...),
		extensions: cfg.Extensions,
		recursive:  cfg.RecursiveOrDefault(),
		outputDir:  cfg.OutputDir,
		ingester:   ingester,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	if cfg.OutputDir != "" {
		if resolved, err := fileid.Resolve(cfg.OutputDir); err == nil {
			w.outputReal = resolved
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// isOutput reports whether path is the output directory or lies inside it.
// Processed-text files written there must never be ingested again.
func (w *Watcher) isOutput(path string) bool {
	if w.outputReal == "" {
		return false
	}
	resolved, err := fileid.Resolve(path)
	if err != nil {
		return false
	}
	return resolved == w.outputReal || fileid.Within(w.outputReal, resolved)
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Missing roots are created.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.fsw = fsw
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	w.ctx = ctx
	w.started = true
	w.logger.Info("watching for documents",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive),
		zap.String("output_dir", w.outputDir))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.isOutput(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if ev.Has(fsnotify.Create) {
				w.handleNewDirectory(path)
			}
			return
		}
		if matchExtension(path, w.extensions) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		// Stored documents are never removed.
		w.logger.Debug("source removed, document kept", zap.String("path", path))
	}
}

// handleNewDirectory starts watching a directory created under a recursive
// root and ingests whatever is already inside it.
func (w *Watcher) handleNewDirectory(dir string) {
	w.mu.Lock()
	if !w.recursive || w.fsw == nil {
		w.mu.Unlock()
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.isOutput(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	ctx := w.ctx
	w.mu.Unlock()
	w.syncDirectory(ctx, dir)
}

func (w *Watcher) addRootLocked(root string) error {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && w.isOutput(path) {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// schedule ingests path after the debounce interval, restarting the timer on
// every new event for the same path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	ctx := w.ctx
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// IngestFile ingests path under its path-derived document ID and writes the
// processed text into the output directory.
func (w *Watcher) IngestFile(ctx context.Context, path string) (models.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("absolute path: %w", err)
	}
	in := models.PDFInput{ID: fileid.DocID(abs), PDFPath: abs}
	if w.outputDir != "" {
		in.OutputPath = filepath.Join(w.outputDir, fileid.ProcessedFileName(abs))
	}
	return w.ingester.AddPDFDocument(ctx, in)
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := w.IngestFile(ctx, path)
	if err != nil {
		w.logger.Error("failed to ingest document", zap.String("path", path), zap.Error(err))
	} else {
		w.logger.Info("document ingested", zap.String("path", path), zap.String("id", doc.ID))
	}
	if w.onResult != nil {
		w.onResult(Result{Path: path, Document: doc, Err: err})
	}
}

func (w *Watcher) syncDirectory(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && (!w.recursive || w.isOutput(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchExtension(path, w.extensions) && !w.isOutput(path) {
			w.ingest(ctx, path)
		}
		return nil
	})
}

// SyncExisting ingests files already present in every root.
func (w *Watcher) SyncExisting(ctx context.Context) {
	for _, root := range w.Directories() {
		w.syncDirectory(ctx, filepath.Clean(root))
	}
}

// Directories returns a copy of the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stop stops watching and cancels pending ingestions.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
