// Package deck reads structural metadata from OOXML presentation files
// without rendering them: the slide order and the text of every slide.
package deck

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	slideRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	drawingNS        = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// Slide is one slide of a deck
type Slide struct {
	Index int
	Part  string   // zip entry, e.g. ppt/slides/slide3.xml
	Text  []string // text runs in document order
}

// Deck is the metadata of one presentation file
type Deck struct {
	Path   string
	Slides []Slide
}

// SlideCount returns the number of slides shown in a slideshow
func (d *Deck) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Prompt returns the text runs of every slide, indexed by slide
func (d *Deck) Prompt() [][]string {
	if d == nil {
		return nil
	}
	out := make([][]string, len(d.Slides))
	for i, s := range d.Slides {
		out[i] = s.Text
	}
	return out
}

// Count returns the slide count of the deck at p
func Count(p string) (int, error) {
	d, err := open(p, false)
	if err != nil {
		return 0, err
	}
	return d.SlideCount(), nil
}

// Open reads the slide list and the text of every slide
func Open(p string) (*Deck, error) {
	return open(p, true)
}

func open(p string, withText bool) (*Deck, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open deck %s: %w", p, err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	parts, err := slideParts(files)
	if err != nil {
		return nil, fmt.Errorf("read deck %s: %w", p, err)
	}

	d := &Deck{Path: p, Slides: make([]Slide, len(parts))}
	for i, part := range parts {
		d.Slides[i] = Slide{Index: i, Part: part}
		if !withText {
			continue
		}
		f, ok := files[part]
		if !ok {
			return nil, fmt.Errorf("read deck %s: missing %s", p, part)
		}
		text, err := readText(f)
		if err != nil {
			return nil, fmt.Errorf("read deck %s: %s: %w", p, part, err)
		}
		d.Slides[i].Text = text
	}
	return d, nil
}

// slideParts returns the slide entries in presentation order. Hidden
// slides are skipped. Packages without a readable slide list fall back to
// the numeric order of ppt/slides/slideN.xml.
func slideParts(files map[string]*zip.File) ([]string, error) {
	pres, ok := files[presentationPart]
	rels, ok2 := files[presentationRels]
	if !ok || !ok2 {
		return numberedSlides(files), nil
	}

	var presentation struct {
		SlideIDs []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldIdLst>sldId"`
	}
	if err := decodePart(pres, &presentation); err != nil {
		return nil, err
	}

	var relationships struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Type   string `xml:"Type,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := decodePart(rels, &relationships); err != nil {
		return nil, err
	}

	targets := make(map[string]string, len(relationships.Items))
	for _, r := range relationships.Items {
		if r.Type != slideRelType {
			continue
		}
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("ppt", target)
		}
		targets[r.ID] = target
	}

	parts := make([]string, 0, len(presentation.SlideIDs))
	for _, id := range presentation.SlideIDs {
		target, ok := targets[id.RID]
		if !ok {
			return nil, fmt.Errorf("slide relationship %s not found", id.RID)
		}
		hidden, err := isHidden(files[target])
		if err != nil {
			return nil, err
		}
		if !hidden {
			parts = append(parts, target)
		}
	}
	return parts, nil
}

func numberedSlides(files map[string]*zip.File) []string {
	type numbered struct {
		n    int
		name string
	}
	var found []numbered
	for name := range files {
		dir, base := path.Split(name)
		if dir != "ppt/slides/" || !strings.HasPrefix(base, "slide") || !strings.HasSuffix(base, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "slide"), ".xml"))
		if err != nil {
			continue
		}
		found = append(found, numbered{n, name})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	parts := make([]string, len(found))
	for i, f := range found {
		parts[i] = f.name
	}
	return parts
}

// isHidden reports the show="0" attribute on the slide root
func isHidden(f *zip.File) (bool, error) {
	if f == nil {
		return false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return false, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			for _, a := range se.Attr {
				if a.Name.Local == "show" && (a.Value == "0" || a.Value == "false") {
					return true, nil
				}
			}
			return false, nil
		}
	}
}

// readText collects the text of every <a:t> inside a run, in order
func readText(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		text  []string
		stack []string
		buf   strings.Builder
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return text, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if t.Name.Space == drawingNS && t.Name.Local == "t" {
				buf.Reset()
			}
		case xml.CharData:
			if inRunText(stack) {
				buf.Write(t)
			}
		case xml.EndElement:
			if inRunText(stack) && t.Name.Space == drawingNS {
				text = append(text, buf.String())
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func inRunText(stack []string) bool {
	n := len(stack)
	return n >= 2 && stack[n-1] == "t" && stack[n-2] == "r"
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	return nil
}
