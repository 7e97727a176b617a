package deck

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedalprompt/internal/deck/decktest"
)

func TestOpenReadsSlidesAndText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "1-Bach-Ave.pptx")
	require.NoError(t, decktest.Write(p,
		[]string{"Ave Maria", "gratia plena"},
		[]string{"Dominus tecum"},
		nil,
	))

	d, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, 3, d.SlideCount())
	assert.Equal(t, [][]string{{"Ave Maria", "gratia plena"}, {"Dominus tecum"}, nil}, d.Prompt())
	assert.Equal(t, "ppt/slides/slide2.xml", d.Slides[1].Part)
}

func TestCount(t *testing.T) {
	p := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, decktest.Write(p, decktest.Blank(5)...))

	n, err := Count(p)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestTextIsUnescaped(t *testing.T) {
	p := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, decktest.Write(p, []string{"Rock & Roll <live>"}))

	d, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rock & Roll <live>"}, d.Slides[0].Text)
}

func writeZip(t *testing.T, parts map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestFallsBackToNumberedSlides(t *testing.T) {
	p := writeZip(t, map[string]string{
		"ppt/slides/slide10.xml": decktest.Slide("ten"),
		"ppt/slides/slide2.xml":  decktest.Slide("two"),
		"ppt/slides/slide1.xml":  decktest.Slide("one"),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	})

	d, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"one"}, {"two"}, {"ten"}}, d.Prompt())
}

func TestPresentationOrderWins(t *testing.T) {
	rel := "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	p := writeZip(t, map[string]string{
		"ppt/presentation.xml": `<p:presentation xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId9"/><p:sldId id="257" r:id="rId3"/><p:sldId id="258" r:id="rId4"/></p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId3" Type="` + rel + `" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId4" Type="` + rel + `" Target="/ppt/slides/slide3.xml"/>` +
			`<Relationship Id="rId9" Type="` + rel + `" Target="slides/slide2.xml"/></Relationships>`,
		"ppt/slides/slide1.xml": decktest.Slide("first file"),
		"ppt/slides/slide2.xml": decktest.Slide("shown first"),
		"ppt/slides/slide3.xml": `<p:sld show="0" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
	})

	d, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"shown first"}, {"first file"}}, d.Prompt(), "hidden slide is skipped")
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pptx"))
	assert.Error(t, err)

	notZip := filepath.Join(t.TempDir(), "plain.pptx")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o644))
	_, err = Count(notZip)
	assert.Error(t, err)
}

func TestNilDeck(t *testing.T) {
	var d *Deck
	assert.Zero(t, d.SlideCount())
	assert.Nil(t, d.Prompt())
}
