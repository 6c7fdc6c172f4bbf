// Package batch parses and converts whole directories of map files with
// bounded parallelism. Each file is isolated: one broken map never aborts
// the run, it just produces a failed result slot.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s3thra/TrenchBroom/mapcache"
	"github.com/s3thra/TrenchBroom/mapparser"
	"github.com/s3thra/TrenchBroom/mapwriter"
)

// Options configures a batch run.
type Options struct {
	// Source is the dialect the input files are written in.
	Source mapparser.Dialect
	// Target is the dialect faces are normalized to. Zero means same as
	// Source.
	Target mapparser.Dialect
	// Jobs bounds the number of files processed concurrently. Zero or
	// negative means runtime.GOMAXPROCS(0).
	Jobs int
	// Cache, when non-nil, skips reparsing files whose bytes are unchanged.
	Cache *mapcache.Cache
	// Emitter, when non-nil, receives progress events.
	Emitter *Emitter
}

// Result is the outcome for one input file. Exactly one of Entities and Err
// is meaningful: a failed parse leaves Entities nil.
type Result struct {
	Path     string
	Entities []mapparser.Entity
	Notes    []mapparser.Note
	Cached   bool
	Err      error
}

func (o Options) target() mapparser.Dialect {
	if o.Target == mapparser.DialectUnknown {
		return o.Source
	}
	return o.Target
}

func (o Options) jobs(files int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if files < jobs {
		jobs = files
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

// ListMaps returns the sorted .map files directly under dir.
func ListMaps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".map") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseDir parses every .map file in dir. Results are returned in the same
// order as the sorted file list, one slot per file, failed files included.
func ParseDir(ctx context.Context, dir string, opts Options) ([]Result, error) {
	files, err := ListMaps(dir)
	if err != nil {
		return nil, err
	}
	opts.Emitter.Emit(RunStartedEvent(dir, len(files)))

	start := time.Now()
	results := make([]Result, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.jobs(len(files)))

	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			results[i] = parseFile(path, i, opts)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return results, err
	}

	ok, failed := tally(results)
	opts.Emitter.Emit(RunCompletedEvent(time.Since(start), ok, failed))
	return results, nil
}

// ConvertDir parses every .map file in dir and rewrites it in the target
// dialect under outDir, preserving base names. Files that fail to parse are
// reported in their result slots and produce no output file.
func ConvertDir(ctx context.Context, dir, outDir string, opts Options) ([]Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	files, err := ListMaps(dir)
	if err != nil {
		return nil, err
	}
	opts.Emitter.Emit(RunStartedEvent(dir, len(files)))

	start := time.Now()
	results := make([]Result, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.jobs(len(files)))

	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			result := parseFile(path, i, opts)
			if result.Err == nil {
				outPath := filepath.Join(outDir, filepath.Base(path))
				if err := writeFile(outPath, result.Entities, opts); err != nil {
					result.Err = err
					result.Entities = nil
					opts.Emitter.Emit(FileFailedEvent(path, err.Error()))
				} else {
					opts.Emitter.Emit(FileWrittenEvent(path, outPath))
				}
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return results, err
	}

	ok, failed := tally(results)
	opts.Emitter.Emit(RunCompletedEvent(time.Since(start), ok, failed))
	return results, nil
}

func parseFile(path string, index int, opts Options) Result {
	opts.Emitter.Emit(FileStartedEvent(path, index))

	src, err := os.ReadFile(path)
	if err != nil {
		opts.Emitter.Emit(FileFailedEvent(path, err.Error()))
		return Result{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	target := opts.target()
	key := mapcache.KeyFor(cacheKeySource(src, opts.Source, target))
	if payload, hit, err := opts.Cache.Get(key); err == nil && hit {
		opts.Emitter.Emit(FileCachedEvent(path))
		return Result{Path: path, Entities: payload.Entities, Notes: payload.Notes, Cached: true}
	}

	started := time.Now()
	status := &mapparser.CollectStatus{}
	parser, err := mapparser.NewParser(src, opts.Source, target, status)
	if err != nil {
		opts.Emitter.Emit(FileFailedEvent(path, err.Error()))
		return Result{Path: path, Err: fmt.Errorf("%s: %w", path, err)}
	}
	entities, err := parser.ParseDocument()
	if err != nil {
		opts.Emitter.Emit(FileFailedEvent(path, err.Error()))
		return Result{Path: path, Notes: status.Notes, Err: fmt.Errorf("%s: %w", path, err)}
	}

	if opts.Cache != nil {
		payload := &mapcache.Payload{Dialect: target, Entities: entities, Notes: status.Notes}
		if err := opts.Cache.Put(key, payload); err != nil {
			status.Report(0, mapparser.SeverityWarning, fmt.Sprintf("caching parse result: %v", err))
		}
	}

	opts.Emitter.Emit(FileParsedEvent(path, len(entities), time.Since(started)))
	return Result{Path: path, Entities: entities, Notes: status.Notes}
}

// cacheKeySource mixes the dialect pair into the keyed bytes so the same
// file parsed under different dialects occupies different cache entries.
func cacheKeySource(src []byte, source, target mapparser.Dialect) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s->%s\x00", source, target)
	buf.Write(src)
	return buf.Bytes()
}

func writeFile(path string, entities []mapparser.Entity, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	writer := &mapwriter.Writer{Dialect: opts.target()}
	if err := writer.WriteEntities(f, entities); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func tally(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
