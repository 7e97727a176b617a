// Package library turns a folder tree of decks into collections of items.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"pedalprompt/internal/deck"
	"pedalprompt/internal/domain"
	"pedalprompt/internal/eventbus"
)

// metadataWorkers bounds concurrent deck reads within one collection
const metadataWorkers = 4

// Materializer renders decks; convert.Cache implements it
type Materializer interface {
	Materialize(ctx context.Context, deckPath, collectionKey string) ([]string, error)
	Cover(deckPath, collectionKey, firstSlide string) (string, error)
}

// Options controls what the loader picks up and how grids are sized
type Options struct {
	Extensions     []string // e.g. ".pptx", matched case-insensitively
	IgnorePrefix   string   // files starting with it are skipped
	CollectionRows int
	CollectionCols int
	ItemRows       int
	ItemCols       int
}

// Loader builds a Library from a root folder
type Loader struct {
	bus   eventbus.EventBus
	cache Materializer
	opts  Options
}

// NewLoader creates a loader
func NewLoader(bus eventbus.EventBus, cache Materializer, opts Options) *Loader {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".pptx"}
	}
	return &Loader{bus: bus, cache: cache, opts: opts}
}

// ResolveRoot returns the first candidate that is an existing directory
func ResolveRoot(candidates []string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	return "", &LoadError{Root: strings.Join(candidates, ", "), Err: fs.ErrNotExist}
}

// Load reads every collection under root. Entries that cannot be used are
// logged, recorded in Library.Failures and skipped; only a missing root is
// an error.
func (l *Loader) Load(ctx context.Context, root string) (*domain.Library, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &LoadError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Root: root, Err: errors.New("not a directory")}
	}

	// ReadDir sorts by name, which fixes Collection.Index
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &LoadError{Root: root, Err: err}
	}

	lib := &domain.Library{Root: root}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		dir := filepath.Join(root, e.Name())
		name, err := ParseCollectionName(e.Name())
		if err != nil {
			l.skip(lib, dir, err)
			continue
		}

		col, err := l.loadCollection(ctx, lib, dir, e.Name(), name, len(lib.Collections))
		if err != nil {
			return nil, err
		}
		lib.Collections = append(lib.Collections, col)
	}

	lib.Rows, lib.Cols, _ = Layout(len(lib.Collections), l.opts.CollectionRows, l.opts.CollectionCols)

	log.Printf("Loaded %d collections from %s (%d entries skipped)", len(lib.Collections), root, len(lib.Failures))
	l.bus.Publish(eventbus.LibraryLoadedEvent{Library: lib})
	return lib, nil
}

type deckEntry struct {
	path   string
	name   DeckName
	prompt [][]string
	err    error
}

func (l *Loader) loadCollection(ctx context.Context, lib *domain.Library, dir, key string, name CollectionName, index int) (*domain.Collection, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Reading collection %s: %v", dir, err)
		lib.Failures = append(lib.Failures, domain.LoadFailure{Path: dir, Err: err})
		files = nil
	}

	var decks []*deckEntry
	for _, f := range files {
		if f.IsDir() || !l.isDeck(f.Name()) {
			continue
		}
		p := filepath.Join(dir, f.Name())
		dn, err := ParseDeckName(f.Name())
		if err != nil {
			l.skip(lib, p, err)
			continue
		}
		decks = append(decks, &deckEntry{path: p, name: dn})
	}

	// Slide text is independent of rendering, read it concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataWorkers)
	for _, d := range decks {
		d := d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dk, err := deck.Open(d.path)
			if err != nil {
				d.err = err
				return nil
			}
			d.prompt = dk.Prompt()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Conversion runs one deck at a time
	var items []*domain.Item
	for _, d := range decks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		images, err := l.cache.Materialize(ctx, d.path, key)
		if err != nil {
			lib.Failures = append(lib.Failures, domain.LoadFailure{Path: d.path, Err: err})
			continue
		}
		if d.err != nil {
			log.Printf("Reading slide text of %s: %v", d.path, d.err)
		}

		cover, err := l.cache.Cover(d.path, key, images[0])
		if err != nil {
			log.Printf("Cover for %s: %v", d.path, err)
		}

		items = append(items, &domain.Item{
			Sequence: d.name.Sequence,
			Artist:   d.name.Artist,
			Title:    d.name.Title,
			DeckPath: d.path,
			Images:   images,
			Prompt:   d.prompt,
			Cover:    cover,
			Index:    len(items),
		})
	}

	col := domain.NewCollection(key, name.Sequence, name.Title, dir, index, items)
	var cells int
	col.Rows, col.Cols, cells = Layout(col.RealCount(), l.opts.ItemRows, l.opts.ItemCols)
	col.Pad(cells)
	return col, nil
}

func (l *Loader) isDeck(file string) bool {
	if l.opts.IgnorePrefix != "" && strings.HasPrefix(file, l.opts.IgnorePrefix) {
		return false
	}
	ext := filepath.Ext(file)
	for _, want := range l.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func (l *Loader) skip(lib *domain.Library, path string, err error) {
	log.Printf("Skipping %s: %v", path, err)
	lib.Failures = append(lib.Failures, domain.LoadFailure{Path: path, Err: err})
	l.bus.Publish(eventbus.EntrySkippedEvent{Path: path, Err: err})
}

// Summary is a one-line description of a loaded library for logs
func Summary(lib *domain.Library) string {
	if lib == nil {
		return "no library"
	}
	items := 0
	for _, c := range lib.Collections {
		items += c.RealCount()
	}
	return fmt.Sprintf("%d collections, %d items, %d failures", lib.Len(), items, len(lib.Failures))
}
