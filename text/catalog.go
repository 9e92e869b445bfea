package text

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrNoFonts is returned by AddFont when the data holds no usable face.
var ErrNoFonts = errors.New("text: no fonts found")

// FontInfo names a font the way callers configure it.
type FontInfo struct {
	Family string `toml:"family"`
	// Face is the style name: "Regular", "Bold", "Italic", "Bold Italic".
	// Empty selects Regular, or the first face of the family.
	Face string `toml:"face"`
	// Size is the pixel size (ppem).
	Size int `toml:"size"`
}

// Catalog maps family and face names to font data. Ids are handed out in
// registration order starting at 1 and are stable for the catalog's life.
type Catalog struct {
	mu         sync.RWMutex
	families   map[string]*family
	nextFamily uint32
	nextFace   uint32
}

type family struct {
	id    uint32
	name  string
	faces map[string]*face
	order []*face
}

// face is one loadable font. The outline font and its buffer are only
// touched by the service worker.
type face struct {
	family uint32
	id     uint32
	name   string
	data   []byte
	index  int

	once sync.Once
	font *sfnt.Font
	buf  sfnt.Buffer
	err  error
}

// NewCatalog creates a catalog and, if dir is not empty, scans it once for
// .ttf, .otf and .ttc files. Unreadable files are logged and skipped.
func NewCatalog(dir string) *Catalog {
	c := &Catalog{families: make(map[string]*family)}
	if dir != "" {
		c.scan(dir)
	}
	return c
}

func (c *Catalog) scan(dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Load().Warn("text: skipping font path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf", ".ttc", ".otc":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Load().Warn("text: cannot read font", "path", path, "err", err)
			return nil
		}
		if _, err := c.AddFont(data); err != nil {
			logger.Load().Warn("text: cannot parse font", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		logger.Load().Warn("text: font scan failed", "dir", dir, "err", err)
	}
	logger.Load().Info("text: font scan complete", "dir", dir, "families", c.Len())
}

// AddFont registers every face in a TTF, OTF or collection and returns
// how each can be addressed. Faces whose family and style are already
// registered are ignored.
func (c *Catalog) AddFont(data []byte) ([]FontInfo, error) {
	faces, err := gotext.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFonts
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	infos := make([]FontInfo, 0, len(faces))
	for i, f := range faces {
		desc := f.Describe()
		if desc.Family == "" {
			continue
		}
		name := faceName(desc.Aspect)
		key := gotext.NormalizeFamily(desc.Family)
		fam, ok := c.families[key]
		if !ok {
			c.nextFamily++
			fam = &family{id: c.nextFamily, name: desc.Family, faces: make(map[string]*face)}
			c.families[key] = fam
		}
		faceKey := strings.ToLower(name)
		if _, dup := fam.faces[faceKey]; !dup {
			c.nextFace++
			fc := &face{family: fam.id, id: c.nextFace, name: name, data: data, index: i}
			fam.faces[faceKey] = fc
			fam.order = append(fam.order, fc)
		}
		infos = append(infos, FontInfo{Family: desc.Family, Face: name})
	}
	if len(infos) == 0 {
		return nil, ErrNoFonts
	}
	return infos, nil
}

func faceName(a gotext.Aspect) string {
	bold := a.Weight >= gotext.WeightSemibold
	italic := a.Style == gotext.StyleItalic
	switch {
	case bold && italic:
		return "Bold Italic"
	case bold:
		return "Bold"
	case italic:
		return "Italic"
	default:
		return "Regular"
	}
}

// resolve finds the face for info. Family matching ignores case and
// spacing.
func (c *Catalog) resolve(info FontInfo) (*face, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fam, ok := c.families[gotext.NormalizeFamily(info.Family)]
	if !ok {
		return nil, false
	}
	want := strings.ToLower(strings.TrimSpace(info.Face))
	if want == "" {
		want = "regular"
	}
	if fc, ok := fam.faces[want]; ok {
		return fc, true
	}
	if info.Face == "" && len(fam.order) > 0 {
		return fam.order[0], true
	}
	return nil, false
}

// Families returns the registered family names, sorted.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.families))
	for _, f := range c.families {
		out = append(out, f.name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of families.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.families)
}

// outline parses the face's outlines on first use.
func (f *face) outline() (*sfnt.Font, error) {
	f.once.Do(func() {
		coll, err := opentype.ParseCollection(f.data)
		if err != nil {
			f.err = err
			return
		}
		f.font, f.err = coll.Font(f.index)
	})
	return f.font, f.err
}
