package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// element is a generic XML element; character data between elements is
// dropped and the output is re-indented.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// unreviewed reports whether a node still carries the export fixme tag.
func (e element) unreviewed() bool {
	if e.XMLName.Local != "node" {
		return false
	}
	for _, child := range e.Children {
		if child.XMLName.Local == "tag" && child.attr("k") == "fixme" && strings.HasPrefix(child.attr("v"), FixmePrefix) {
			return true
		}
	}
	return false
}

// Clean copies an OSM document from r to w, dropping top-level nodes that
// were never reviewed. It returns the number of nodes removed.
func Clean(r io.Reader, w io.Writer) (int, error) {
	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return 0, fmt.Errorf("failed to parse osm: %w", err)
	}
	if root.XMLName.Local != "osm" {
		return 0, fmt.Errorf("unexpected root element %q", root.XMLName.Local)
	}

	kept := root.Children[:0]
	removed := 0
	for _, child := range root.Children {
		if child.unreviewed() {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	root.Children = kept

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return 0, err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return 0, fmt.Errorf("failed to encode osm: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return 0, err
	}
	return removed, nil
}

// CleanPath returns the output path used by CleanFile.
func CleanPath(path string) string {
	return path + ".clean.osm"
}

// CleanFile cleans path into CleanPath(path).
func CleanFile(path string) (string, int, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			// Best-effort close of the input document.
			_ = cerr
		}
	}()

	out := CleanPath(path)
	var removed int
	err = writeAtomic(out, func(w io.Writer) error {
		n, err := Clean(in, w)
		removed = n
		return err
	})
	if err != nil {
		return "", 0, err
	}
	log.Printf("[export] removed %d unreviewed nodes, wrote %s", removed, out)
	return out, removed, nil
}
