package convert

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

const coverDir = "covers"

// CoverPath returns where the thumbnail of a deck is stored
func (c *Cache) CoverPath(deckPath, collectionKey string) string {
	return filepath.Join(c.Dir(collectionKey), coverDir, deckBase(deckPath)+ImageExt)
}

// Cover returns a thumbnail of the first slide image, scaled to the
// configured cover width. It returns "" when covers are disabled.
func (c *Cache) Cover(deckPath, collectionKey, firstSlide string) (string, error) {
	if c.coverWidth <= 0 {
		return "", nil
	}

	out := c.CoverPath(deckPath, collectionKey)
	if Fresh(firstSlide, []string{out}) {
		return out, nil
	}

	if err := Thumbnail(firstSlide, out, c.coverWidth); err != nil {
		return "", &ConversionError{Deck: deckPath, Stage: StageOutput, Err: fmt.Errorf("cover: %w", err)}
	}
	return out, nil
}

// Thumbnail scales the PNG at src to width pixels wide, keeping the aspect
// ratio, and writes it to dst
func Thumbnail(src, dst string, width int) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("decode %s: empty image", src)
	}
	if width > b.Dx() {
		width = b.Dx()
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".cover-*")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, scaled); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
