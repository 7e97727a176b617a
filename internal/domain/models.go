package domain

// Item represents one performable deck inside a collection
type Item struct {
	Sequence      string
	Artist        string // secondary label
	Title         string
	DeckPath      string
	Images        []string   // rendered slide images, slide order
	Prompt        [][]string // text runs per slide
	Cover         string     // thumbnail of the first slide, may be empty
	Index         int        // position within the parent collection
	IsPlaceholder bool
}

// SlideCount returns the number of rendered slides
func (i *Item) SlideCount() int {
	return len(i.Images)
}

// Collection represents a named group of items, e.g. a songbook
type Collection struct {
	Key      string // folder name, also the cache namespace
	Sequence string
	Title    string
	Path     string
	Items    []*Item // real items first, then placeholders
	Index    int
	Rows     int
	Cols     int

	realCount int
}

// NewCollection creates a collection whose first realCount items are real
func NewCollection(key, sequence, title, path string, index int, items []*Item) *Collection {
	return &Collection{
		Key:       key,
		Sequence:  sequence,
		Title:     title,
		Path:      path,
		Items:     items,
		Index:     index,
		realCount: len(items),
	}
}

// RealCount returns the number of non-placeholder items
func (c *Collection) RealCount() int {
	return c.realCount
}

// PlaceholderCount returns the number of padding items
func (c *Collection) PlaceholderCount() int {
	return len(c.Items) - c.realCount
}

// Item returns the real item at index, or nil
func (c *Collection) Item(index int) *Item {
	if index < 0 || index >= c.realCount {
		return nil
	}
	return c.Items[index]
}

// Pad appends placeholders until the collection has n cells
func (c *Collection) Pad(n int) {
	for len(c.Items) < n {
		c.Items = append(c.Items, &Item{
			Index:         len(c.Items),
			IsPlaceholder: true,
		})
	}
}

// LoadFailure records a deck or folder that could not be used
type LoadFailure struct {
	Path string
	Err  error
}

// Library is the ordered list of collections loaded for this run
type Library struct {
	Root        string
	Collections []*Collection
	Rows        int
	Cols        int
	Failures    []LoadFailure
}

// Collection returns the collection at index, or nil
func (l *Library) Collection(index int) *Collection {
	if l == nil || index < 0 || index >= len(l.Collections) {
		return nil
	}
	return l.Collections[index]
}

// Len returns the number of collections
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Collections)
}

// IsEmpty reports whether there is nothing to navigate
func (l *Library) IsEmpty() bool {
	return l.Len() == 0
}
