package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/poideck/internal/model"
)

const (
	osmVersion = "0.6"
	generator  = "poideck"
	// FixmePrefix marks nodes that still need review in an editor.
	FixmePrefix = "poideck #"
	timeLayout  = "2006-01-02T15:04:05Z"
)

// Source is the read side of the store used by export.
type Source interface {
	Bounds(ctx context.Context) (model.Bounds, bool, error)
	ListPOIs(ctx context.Context) ([]model.POI, error)
}

type osmDoc struct {
	XMLName   xml.Name   `xml:"osm"`
	Version   string     `xml:"version,attr"`
	Generator string     `xml:"generator,attr"`
	Bounds    *osmBounds `xml:"bounds,omitempty"`
	Nodes     []osmNode  `xml:"node"`
}

type osmBounds struct {
	MinLat string `xml:"minlat,attr"`
	MinLon string `xml:"minlon,attr"`
	MaxLat string `xml:"maxlat,attr"`
	MaxLon string `xml:"maxlon,attr"`
}

type osmNode struct {
	ID        int64    `xml:"id,attr"`
	Visible   bool     `xml:"visible,attr"`
	Lat       string   `xml:"lat,attr"`
	Lon       string   `xml:"lon,attr"`
	Timestamp string   `xml:"timestamp,attr"`
	Tags      []osmTag `xml:"tag"`
}

type osmTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

// Write renders every stored POI as an OSM node. Nodes get negative ids so an
// editor treats them as new objects. It fails before writing anything if a
// record's category has no rule.
func Write(ctx context.Context, src Source, rules Rules, w io.Writer) (int, error) {
	doc, err := buildDoc(ctx, src, rules)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return 0, err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("failed to encode osm: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return 0, err
	}
	return len(doc.Nodes), nil
}

func buildDoc(ctx context.Context, src Source, rules Rules) (osmDoc, error) {
	doc := osmDoc{Version: osmVersion, Generator: generator, Nodes: []osmNode{}}

	bounds, ok, err := src.Bounds(ctx)
	if err != nil {
		return osmDoc{}, fmt.Errorf("failed to compute bounds: %w", err)
	}
	if ok {
		doc.Bounds = &osmBounds{
			MinLat: formatCoord(bounds.MinLat),
			MinLon: formatCoord(bounds.MinLon),
			MaxLat: formatCoord(bounds.MaxLat),
			MaxLon: formatCoord(bounds.MaxLon),
		}
	}

	pois, err := src.ListPOIs(ctx)
	if err != nil {
		return osmDoc{}, fmt.Errorf("failed to list pois: %w", err)
	}
	for _, poi := range pois {
		tags, ok := rules.Tags(poi.Category)
		if !ok {
			return osmDoc{}, fmt.Errorf("no rule for category %q (record #%d)", poi.Category, poi.ID)
		}
		created := poi.Created.UTC().Format(timeLayout)
		node := osmNode{
			ID:        -poi.ID,
			Visible:   true,
			Lat:       formatCoord(poi.Latitude),
			Lon:       formatCoord(poi.Longitude),
			Timestamp: created,
			Tags:      make([]osmTag, 0, len(tags)+1),
		}
		for _, tag := range tags {
			node.Tags = append(node.Tags, osmTag{Key: tag.Key, Value: tag.Value})
		}
		node.Tags = append(node.Tags, osmTag{Key: "fixme", Value: fmt.Sprintf("%s%d %s", FixmePrefix, poi.ID, created)})
		doc.Nodes = append(doc.Nodes, node)
	}
	return doc, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFile exports to path, replacing it only once the document is complete.
func WriteFile(ctx context.Context, src Source, rules Rules, path string) (int, error) {
	var count int
	err := writeAtomic(path, func(w io.Writer) error {
		n, err := Write(ctx, src, rules, w)
		count = n
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[export] wrote %d nodes to %s", count, path)
	return count, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".poideck-*.osm")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmpFile); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
