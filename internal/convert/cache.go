// Package convert turns slide decks into ordered image sequences and keeps
// the results on disk between runs.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pedalprompt/internal/deck"
	"pedalprompt/internal/eventbus"
)

// DPI is the rasterization resolution. It is well above screen resolution
// so lyrics stay sharp when a slide fills the display.
const DPI = 200

// ImageExt is the extension of every rendered slide
const ImageExt = ".png"

// Cache materializes decks under root/<collection>/<deck>-<slide>.png.
//
// An entry is valid only when every expected image exists and none is
// older than the deck. Anything else is a miss and the whole deck is
// converted again.
type Cache struct {
	root       string
	converter  Converter
	rasterizer Rasterizer
	bus        eventbus.EventBus
	coverWidth int

	// soffice cannot run twice against one user profile
	mu sync.Mutex

	count func(string) (int, error)
}

// Option configures a Cache
type Option func(*Cache)

// WithBus publishes conversion results on bus
func WithBus(bus eventbus.EventBus) Option {
	return func(c *Cache) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithCoverWidth sets the width of generated cover thumbnails; 0 disables them
func WithCoverWidth(width int) Option {
	return func(c *Cache) {
		c.coverWidth = width
	}
}

// NewCache creates a cache rooted at root
func NewCache(root string, converter Converter, rasterizer Rasterizer, opts ...Option) *Cache {
	c := &Cache{
		root:       root,
		converter:  converter,
		rasterizer: rasterizer,
		bus:        eventbus.NullBus{},
		count:      deck.Count,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the output root
func (c *Cache) Root() string {
	return c.root
}

// Dir returns the output directory of one collection
func (c *Cache) Dir(collectionKey string) string {
	return filepath.Join(c.root, collectionKey)
}

// ExpectedPaths returns the image path of every slide of a deck with n slides
func (c *Cache) ExpectedPaths(deckPath, collectionKey string, n int) []string {
	base := deckBase(deckPath)
	dir := c.Dir(collectionKey)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ImageExt))
	}
	return paths
}

// Fresh reports whether every path exists and is not older than deckPath
func Fresh(deckPath string, paths []string) bool {
	src, err := os.Stat(deckPath)
	if err != nil {
		return false
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return false
		}
		if info.ModTime().Before(src.ModTime()) {
			return false
		}
	}
	return true
}

// Materialize returns the slide images of deckPath in slide order,
// converting the deck when the cached images are missing or stale
func (c *Cache) Materialize(ctx context.Context, deckPath, collectionKey string) ([]string, error) {
	paths, cached, err := c.materialize(ctx, deckPath, collectionKey)
	if err != nil {
		log.Printf("Conversion failed: %v", err)
		c.bus.Publish(eventbus.ConversionFailedEvent{DeckPath: deckPath, Err: err})
		return nil, err
	}
	c.bus.Publish(eventbus.DeckConvertedEvent{DeckPath: deckPath, Slides: len(paths), Cached: cached})
	return paths, nil
}

func (c *Cache) materialize(ctx context.Context, deckPath, collectionKey string) ([]string, bool, error) {
	n, err := c.count(deckPath)
	if err != nil {
		return nil, false, &ConversionError{Deck: deckPath, Stage: StageMetadata, Err: err}
	}
	if n == 0 {
		return nil, false, &ConversionError{Deck: deckPath, Stage: StageMetadata, Err: errors.New("deck has no slides")}
	}

	expected := c.ExpectedPaths(deckPath, collectionKey, n)
	if Fresh(deckPath, expected) {
		return expected, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have converted it while we waited
	if Fresh(deckPath, expected) {
		return expected, true, nil
	}

	log.Printf("Converting %s (%d slides)", deckPath, n)
	if err := c.convert(ctx, deckPath, collectionKey, expected); err != nil {
		return nil, false, err
	}
	return expected, false, nil
}

// convert runs the pipeline in a scratch directory and moves the pages into
// place. The scratch directory, holding the intermediate PDF, is always
// removed.
func (c *Cache) convert(ctx context.Context, deckPath, collectionKey string, expected []string) error {
	dir := c.Dir(collectionKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ConversionError{Deck: deckPath, Stage: StageOutput, Err: err}
	}

	if err := removeRendered(dir, deckBase(deckPath)); err != nil {
		return &ConversionError{Deck: deckPath, Stage: StageOutput, Err: err}
	}

	scratch, err := os.MkdirTemp(dir, ".convert-")
	if err != nil {
		return &ConversionError{Deck: deckPath, Stage: StageOutput, Err: err}
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("Removing %s: %v", scratch, err)
		}
	}()

	pdf, err := c.converter.ToPDF(ctx, deckPath, scratch)
	if err != nil {
		return &ConversionError{Deck: deckPath, Stage: StageConvert, Err: err}
	}

	pages, err := c.rasterizer.Rasterize(ctx, pdf, scratch, DPI)
	if err != nil {
		return &ConversionError{Deck: deckPath, Stage: StageRasterize, Err: err}
	}
	if len(pages) == 0 {
		return &ConversionError{Deck: deckPath, Stage: StageRasterize, Err: ErrNoOutput}
	}
	if len(pages) != len(expected) {
		return &ConversionError{
			Deck:  deckPath,
			Stage: StageOutput,
			Err:   fmt.Errorf("rendered %d pages for %d slides", len(pages), len(expected)),
		}
	}

	for i, page := range pages {
		if err := os.Rename(page, expected[i]); err != nil {
			return &ConversionError{Deck: deckPath, Stage: StageOutput, Err: err}
		}
	}
	return nil
}

// removeRendered deletes earlier images of the deck with base name base,
// including pages beyond the current slide count
func removeRendered(dir, base string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := pageNumber(e.Name(), base, ImageExt); !ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func deckBase(deckPath string) string {
	name := filepath.Base(deckPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
