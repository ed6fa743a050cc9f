// Package inbox imports transactions from CSV files dropped into a directory.
// Every row goes through the transaction service, so the same existence,
// ownership and validation rules apply as over HTTP.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"budgeter/models"
	"budgeter/pkg/ledger"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

const (
	DoneDir   = "done"
	FailedDir = "failed"
)

// Creator is the part of the transaction service the importer needs.
type Creator interface {
	Create(ctx context.Context, userID uint, in ledger.TransactionInput) (*models.Transaction, error)
}

// Result summarizes one processed file.
type Result struct {
	File     string
	Imported int
	Errors   []RowError
	MovedTo  string
}

type Importer struct {
	dir      string
	userID   uint
	txns     Creator
	workers  int
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

type Option func(*Importer)

// WithWorkers bounds the number of files processed concurrently.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithDebounce sets how long a file must stay quiet before it is picked up
// in watch mode.
func WithDebounce(d time.Duration) Option {
	return func(im *Importer) { im.debounce = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) { im.log = l }
}

func New(dir string, userID uint, txns Creator, opts ...Option) *Importer {
	im := &Importer{
		dir:      dir,
		userID:   userID,
		txns:     txns,
		workers:  runtime.NumCPU(),
		debounce: 300 * time.Millisecond,
		log:      slog.Default(),
		inFlight: make(map[string]bool),
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

func isInboxFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv") && !strings.HasPrefix(name, ".")
}

// Pending lists the CSV files waiting in the inbox, sorted by name.
func (im *Importer) Pending() ([]string, error) {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isInboxFile(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Scan processes every pending file once.
func (im *Importer) Scan(ctx context.Context) ([]Result, error) {
	files, err := im.Pending()
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := im.ProcessFile(ctx, name)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// claim guards against the scan and the watcher picking up the same file.
func (im *Importer) claim(name string) bool {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.inFlight[name] {
		return false
	}
	im.inFlight[name] = true
	return true
}

func (im *Importer) release(name string) {
	im.mu.Lock()
	delete(im.inFlight, name)
	im.mu.Unlock()
}

// ProcessFile imports one file and moves it to done/ or, when any row
// failed, to failed/ next to a .err file listing the failures. Rows that
// succeeded stay imported either way. The returned error is only set for
// I/O problems with the file itself.
func (im *Importer) ProcessFile(ctx context.Context, name string) (Result, error) {
	res := Result{File: name}
	if !im.claim(name) {
		return res, nil
	}
	defer im.release(name)

	src := filepath.Join(im.dir, name)
	f, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("open %s: %w", name, err)
	}
	rows, bad, err := ParseCSV(f)
	f.Close()
	if err != nil {
		return res, fmt.Errorf("read %s: %w", name, err)
	}
	res.Errors = bad

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := im.txns.Create(ctx, im.userID, ledger.TransactionInput{
			Amount:     row.Amount,
			Note:       row.Note,
			CategoryID: row.CategoryID,
		})
		if err != nil {
			if ledger.KindOf(err) == 0 {
				return res, fmt.Errorf("%s line %d: %w", name, row.Line, err)
			}
			res.Errors = append(res.Errors, RowError{Line: row.Line, Err: err})
			continue
		}
		res.Imported++
		im.log.Debug("imported transaction", "file", name, "line", row.Line, "id", t.ID)
	}

	target := DoneDir
	if len(res.Errors) > 0 {
		target = FailedDir
	}
	dst, err := moveTo(src, filepath.Join(im.dir, target))
	if err != nil {
		return res, fmt.Errorf("move %s: %w", name, err)
	}
	res.MovedTo = dst
	if len(res.Errors) > 0 {
		if err := writeErrors(dst+".err", res.Errors); err != nil {
			return res, err
		}
		im.log.Warn("inbox file had failures", "file", name, "imported", res.Imported, "failed", len(res.Errors))
	} else {
		im.log.Info("inbox file imported", "file", name, "imported", res.Imported)
	}
	return res, nil
}

func writeErrors(path string, errs []RowError) error {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// moveTo moves src into dir, falling back to copy+remove across devices.
func moveTo(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	return dst, copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// Watch processes files as they appear until ctx is cancelled. A file is
// picked up once no write event has been seen for the debounce interval.
func (im *Importer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(im.dir); err != nil {
		return err
	}
	im.log.Info("watching inbox", "dir", im.dir, "debounce", im.debounce)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers + 1)

	fileCh := make(chan string, 256)
	g.Go(func() error {
		defer close(fileCh)
		pending := map[string]time.Time{}
		tick := im.debounce / 2
		if tick <= 0 {
			tick = 10 * time.Millisecond
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(ev.Name)
				if filepath.Dir(ev.Name) != filepath.Clean(im.dir) || !isInboxFile(name) {
					continue
				}
				pending[name] = time.Now()
			case <-ticker.C:
				now := time.Now()
				for name, seen := range pending {
					if now.Sub(seen) >= im.debounce {
						delete(pending, name)
						select {
						case fileCh <- name:
						case <-ctx.Done():
							return nil
						}
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				im.log.Warn("watch error", "error", err)
			}
		}
	})

	for name := range fileCh {
		name := name
		g.Go(func() error {
			if _, err := im.ProcessFile(ctx, name); err != nil && ctx.Err() == nil {
				im.log.Error("inbox file failed", "file", name, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
