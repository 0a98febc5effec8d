// Package batch extracts metadata from many image files concurrently.
// One failing file never aborts the others.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sagan/naimeta/features/imagemeta"
)

type Options struct {
	// Max concurrent files. <= 0 means runtime.NumCPU().
	Workers int
	// Nil means a default extractor.
	Extractor *imagemeta.Extractor
	// Hook, if set, runs in the worker after a successful extraction with the file contents.
	// A returned error marks the item as failed.
	Hook func(item *Item, data []byte) error
	// OnDone, if set, is called after each file, serialized.
	OnDone func(item *Item)
}

// Item is the outcome for one input file.
type Item struct {
	Path   string
	Record *imagemeta.Record
	Err    error
}

// Report holds one Item per input path, in input order.
type Report struct {
	Items []*Item
}

// Failed returns the items that produced no record.
func (r *Report) Failed() (failed []*Item) {
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// Succeeded returns the items that produced a record.
func (r *Report) Succeeded() (ok []*Item) {
	for _, item := range r.Items {
		if item.Err == nil {
			ok = append(ok, item)
		}
	}
	return ok
}

// Records returns the records of all succeeded items.
func (r *Report) Records() (records []*imagemeta.Record) {
	for _, item := range r.Succeeded() {
		records = append(records, item.Record)
	}
	return records
}

// Run reads and extracts every path. Once ctx is done no new file is started and
// the unstarted items carry the context error.
func Run(ctx context.Context, paths []string, opts Options) *Report {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = &imagemeta.Extractor{}
	}
	report := &Report{Items: make([]*Item, len(paths))}
	for i, path := range paths {
		report.Items[i] = &Item{Path: path}
	}

	var mu sync.Mutex
	done := func(item *Item) {
		if opts.OnDone == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		opts.OnDone(item)
	}

	g := &errgroup.Group{}
	g.SetLimit(workers)
	for i, item := range report.Items {
		if err := ctx.Err(); err != nil {
			for _, rest := range report.Items[i:] {
				rest.Err = err
			}
			break
		}
		g.Go(func() error {
			process(ctx, extractor, item, opts.Hook)
			done(item)
			return nil
		})
	}
	g.Wait()
	return report
}

func process(ctx context.Context, extractor *imagemeta.Extractor, item *Item, hook func(*Item, []byte) error) {
	if err := ctx.Err(); err != nil {
		item.Err = err
		return
	}
	data, err := os.ReadFile(item.Path)
	if err != nil {
		item.Err = err
		return
	}
	item.Record, err = extractor.Extract(filepath.Base(item.Path), data)
	if err != nil {
		log.Debugf("%s: %v", item.Path, err)
		item.Err = err
		return
	}
	if hook != nil {
		if err := hook(item, data); err != nil {
			item.Err = err
			item.Record = nil
		}
	}
}
