package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sesimgo/sesim/internal/world"
)

// Raster is one gridded attribute loaded from a data file. Values are
// row-major, index y*width+x.
type Raster struct {
	Attr   string    `yaml:"attr"`
	Width  int       `yaml:"width"`
	Height int       `yaml:"height"`
	Values []float64 `yaml:"values"`
}

// RasterTable provides the rasters of one data file, looked up by attribute.
type RasterTable struct {
	rasters map[string]*Raster
	order   []string
}

type rasterFile struct {
	Rasters []Raster `yaml:"rasters"`
}

// LoadRasters loads a raster data file.
func LoadRasters(path string) (*RasterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rasters %s: %w", path, err)
	}
	var file rasterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rasters %s: %w", path, err)
	}

	table := &RasterTable{rasters: make(map[string]*Raster, len(file.Rasters))}
	for i := range file.Rasters {
		r := &file.Rasters[i]
		if r.Attr == "" {
			return nil, fmt.Errorf("rasters %s: entry %d has no attr", path, i)
		}
		if _, dup := table.rasters[r.Attr]; dup {
			return nil, fmt.Errorf("rasters %s: duplicate attr %q", path, r.Attr)
		}
		if want := r.Width * r.Height; r.Width < 1 || r.Height < 1 || len(r.Values) != want {
			return nil, fmt.Errorf("rasters %s: attr %q: %dx%d grid needs %d values, has %d",
				path, r.Attr, r.Width, r.Height, want, len(r.Values))
		}
		table.rasters[r.Attr] = r
		table.order = append(table.order, r.Attr)
	}
	return table, nil
}

// Get looks up one raster by attribute name.
func (t *RasterTable) Get(attr string) (*Raster, bool) {
	r, ok := t.rasters[attr]
	return r, ok
}

// Attrs lists the loaded attribute names in file order.
func (t *RasterTable) Attrs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Apply writes every raster onto the layer as cell attributes. All rasters
// must match the layer's dimensions.
func (t *RasterTable) Apply(l *world.Layer) error {
	for _, attr := range t.order {
		r := t.rasters[attr]
		if r.Width != l.Width() || r.Height != l.Height() {
			return fmt.Errorf("raster %q is %dx%d, layer %s is %dx%d",
				attr, r.Width, r.Height, l.Name(), l.Width(), l.Height())
		}
		if err := l.ApplyRaster(attr, r.Values); err != nil {
			return err
		}
	}
	return nil
}
