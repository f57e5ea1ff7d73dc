package adxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
)

// Decode reads an ADX document back into a cube. Data value attributes
// other than dataElement and value become aggregations in document order.
// Name is the first group's data set, as Build sets it
func Decode(r io.Reader) (*adx.Cube, error) {
	dec := xml.NewDecoder(r)
	var (
		cube    *adx.Cube
		current *adx.Group
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("adxml: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "adx":
				cube = &adx.Cube{Groups: []adx.Group{}}
				if v, ok := attr(t, "exported"); ok {
					if ts, err := time.Parse(time.RFC3339, v); err == nil {
						cube.Exported = ts
					}
				}
			case "group":
				if cube == nil {
					return nil, errors.New("adxml: group outside adx")
				}
				g := adx.Group{}
				g.OrgUnit, _ = attr(t, "orgUnit")
				g.Period, _ = attr(t, "period")
				g.DataSet, _ = attr(t, "dataSet")
				g.Comment, _ = attr(t, "comment")
				cube.Groups = append(cube.Groups, g)
				current = &cube.Groups[len(cube.Groups)-1]
			case "dataValue":
				if current == nil {
					return nil, errors.New("adxml: dataValue outside group")
				}
				dv := adx.DataValue{Aggregations: []adx.Aggregation{}}
				for _, a := range t.Attr {
					switch {
					case a.Name.Space == "xmlns" || a.Name.Local == "xmlns":
					case a.Name.Local == "dataElement":
						dv.DataElement = a.Value
					case a.Name.Local == "value":
						dv.Value = a.Value
					default:
						dv.Aggregations = append(dv.Aggregations, adx.Aggregation{LabelName: a.Name.Local, LabelValue: a.Value})
					}
				}
				current.DataValues = append(current.DataValues, dv)
			}
		case xml.EndElement:
			if t.Name.Local == "group" {
				current = nil
			}
		}
	}
	if cube == nil {
		return nil, errors.New("adxml: no adx element")
	}
	if len(cube.Groups) > 0 {
		cube.Name = cube.Groups[0].DataSet
	}
	return cube, nil
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
