package evaluation

import (
	"encoding/xml"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedAnnotation is returned for annotation files that cannot be
// turned into ground-truth rows.
var ErrMalformedAnnotation = errors.New("malformed annotation")

type vocAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename string      `xml:"filename"`
	Objects  []vocObject `xml:"object"`
}

type vocObject struct {
	Name   string `xml:"name"`
	BndBox struct {
		XMin string `xml:"xmin"`
		YMin string `xml:"ymin"`
		XMax string `xml:"xmax"`
		YMax string `xml:"ymax"`
	} `xml:"bndbox"`
}

// ParseVOC reads a Pascal VOC annotation document and returns one row per
// <object>, in document order, for every category.
//
// Arguments:
// - r: The XML document.
//
// Returns:
// - The ground-truth table.
// - An error wrapping ErrMalformedAnnotation when the document or a
// coordinate cannot be parsed.
func ParseVOC(r io.Reader) (Table, error) {
	var doc vocAnnotation
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedAnnotation, "decode: %v", err)
	}

	table := make(Table, 0, len(doc.Objects))
	for i, obj := range doc.Objects {
		row := Row{Category: strings.TrimSpace(obj.Name)}
		coords := []struct {
			dst  *int
			text string
			name string
		}{
			{&row.XMin, obj.BndBox.XMin, "xmin"},
			{&row.YMin, obj.BndBox.YMin, "ymin"},
			{&row.XMax, obj.BndBox.XMax, "xmax"},
			{&row.YMax, obj.BndBox.YMax, "ymax"},
		}
		for _, c := range coords {
			v, err := parseCoordinate(c.text)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedAnnotation, "object %d %s %q", i, c.name, c.text)
			}
			*c.dst = v
		}
		table = append(table, row)
	}

	return table, nil
}

// LoadVOC reads the Pascal VOC annotation file at path.
func LoadVOC(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open annotation")
	}
	defer f.Close()

	table, err := ParseVOC(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return table, nil
}

// parseCoordinate accepts integer coordinates and, as some VOC exports
// contain them, fractional ones, which are truncated.
func parseCoordinate(text string) (int, error) {
	text = strings.TrimSpace(text)
	if v, err := strconv.Atoi(text); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("not a number: %q", text)
	}
	return int(f), nil
}
