//go:build e2e && unix

package main

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The fake soffice writes an empty PDF named after the deck; the fake
// pdftoppm always renders two pages. Every fixture deck therefore has two
// slides.
const fakeSoffice = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) out="$2"; shift 2 ;;
    --*) shift ;;
    *) deck="$1"; shift ;;
  esac
done
base=$(basename "$deck")
base="${base%.*}"
printf '%%PDF-1.4\n' > "$out/$base.pdf"
`

const fakePdftoppm = `#!/bin/sh
for prefix; do :; done
printf 'page' > "$prefix-1.png"
printf 'page' > "$prefix-2.png"
`

const configTemplate = `library_root = %q
cache_dir = %q
log_file = %q
watch = true

[grid]
collection_rows = 2
collection_cols = 3
item_rows = 2
item_cols = 3

[devices]
pedal_suffix = "no-such-foot-switch"
keyboard_suffix = "no-such-keyboard"
grab = false
release_after_ms = 60

[convert]
soffice = %q
pdftoppm = %q
cover_width = 0
`

// CreateWorkspace lays out a songbook with Choir, Band and an Empty
// collection, the fake converters and a config file. It returns the config path.
func (tf *TUITestFramework) CreateWorkspace() (string, error) {
	tf.workspace = tf.t.TempDir()
	ws := tf.workspace

	songbook := filepath.Join(ws, "songbook")
	decks := map[string][2]string{
		"1-Choir/1-Bach-Ave.pptx":       {"Ave Maria", "gratia plena"},
		"1-Choir/2-Mozart-Laudate.pptx": {"Laudate Dominum", "omnes gentes"},
		"2-Band/1-Queen-Somebody.pptx":  {"Can anybody find me", "somebody to love"},
		"2-Band/~1-Queen-Somebody.pptx": {"lock file", "ignored"},
		"2-Band/notes.txt":              {"", ""},
		"3-Empty/readme.pptx":           {"not a", "sequence"},
	}
	for rel, slides := range decks {
		p := filepath.Join(songbook, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", err
		}
		if !strings.HasSuffix(p, ".pptx") {
			if err := os.WriteFile(p, []byte("notes"), 0o644); err != nil {
				return "", err
			}
			continue
		}
		if err := WriteDeck(p, slides[0], slides[1]); err != nil {
			return "", err
		}
	}

	soffice := filepath.Join(ws, "bin", "soffice")
	pdftoppm := filepath.Join(ws, "bin", "pdftoppm")
	if err := os.MkdirAll(filepath.Dir(soffice), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(soffice, []byte(fakeSoffice), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(pdftoppm, []byte(fakePdftoppm), 0o755); err != nil {
		return "", err
	}

	cfg := filepath.Join(ws, "config.toml")
	body := fmt.Sprintf(configTemplate,
		songbook,
		filepath.Join(ws, "cache"),
		filepath.Join(ws, "pedalprompt.log"),
		soffice,
		pdftoppm,
	)
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		return "", err
	}
	return cfg, nil
}

// Songbook returns the library root inside the workspace
func (tf *TUITestFramework) Songbook() string {
	return filepath.Join(tf.workspace, "songbook")
}

// WriteDeck writes a presentation with one text run per slide
func WriteDeck(path string, slides ...string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)

	var ids, rels strings.Builder
	parts := map[string]string{}
	for i, text := range slides {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
			`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	parts["ppt/presentation.xml"] = `<p:presentation xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:sldIdLst>` + ids.String() + `</p:sldIdLst></p:presentation>`
	parts["ppt/_rels/presentation.xml.rels"] = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels.String() + `</Relationships>`

	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write([]byte(body)); err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
