package library

import (
	"io"

	"github.com/goccy/go-json"

	"pedalprompt/internal/domain"
)

type dumpItem struct {
	Sequence string   `json:"sequence"`
	Artist   string   `json:"artist"`
	Title    string   `json:"title"`
	Deck     string   `json:"deck"`
	Slides   int      `json:"slides"`
	Cover    string   `json:"cover,omitempty"`
	Images   []string `json:"images"`
}

type dumpCollection struct {
	Key          string     `json:"key"`
	Sequence     string     `json:"sequence"`
	Title        string     `json:"title"`
	Rows         int        `json:"rows"`
	Cols         int        `json:"cols"`
	Placeholders int        `json:"placeholders"`
	Items        []dumpItem `json:"items"`
}

type dumpFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type dumpLibrary struct {
	Root        string           `json:"root"`
	Rows        int              `json:"rows"`
	Cols        int              `json:"cols"`
	Collections []dumpCollection `json:"collections"`
	Failures    []dumpFailure    `json:"failures,omitempty"`
}

// Dump writes lib as indented JSON, real items only
func Dump(w io.Writer, lib *domain.Library) error {
	out := dumpLibrary{Collections: []dumpCollection{}}
	if lib != nil {
		out.Root = lib.Root
		out.Rows = lib.Rows
		out.Cols = lib.Cols
		for _, c := range lib.Collections {
			dc := dumpCollection{
				Key:          c.Key,
				Sequence:     c.Sequence,
				Title:        c.Title,
				Rows:         c.Rows,
				Cols:         c.Cols,
				Placeholders: c.PlaceholderCount(),
				Items:        make([]dumpItem, 0, c.RealCount()),
			}
			for i := 0; i < c.RealCount(); i++ {
				it := c.Item(i)
				dc.Items = append(dc.Items, dumpItem{
					Sequence: it.Sequence,
					Artist:   it.Artist,
					Title:    it.Title,
					Deck:     it.DeckPath,
					Slides:   it.SlideCount(),
					Cover:    it.Cover,
					Images:   it.Images,
				})
			}
			out.Collections = append(out.Collections, dc)
		}
		for _, f := range lib.Failures {
			out.Failures = append(out.Failures, dumpFailure{Path: f.Path, Error: f.Err.Error()})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
