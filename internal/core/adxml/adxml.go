// Package adxml serializes adx cubes to the ADX XML wire format and reads them back
package adxml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/validate"
)

// Namespace is the IHE ADX namespace DHIS2 accepts on the root element
const Namespace = "urn:ihe:qrph:adx:2015"

// ErrInvalidLabel is returned for label names that cannot be written as attributes
var ErrInvalidLabel = errors.New("adxml: invalid label name")

// Option tweaks the document layout
type Option func(*options)

type options struct {
	namespace string
	prefix    string
	indent    string
	exported  bool
}

// WithNamespace sets xmlns on the root element
func WithNamespace(ns string) Option { return func(o *options) { o.namespace = ns } }

// WithIndent pretty prints like xml.Encoder.Indent; the default is compact
func WithIndent(prefix, indent string) Option {
	return func(o *options) { o.prefix, o.indent = prefix, indent }
}

// WithExported writes the cube's export time on the root element
func WithExported() Option { return func(o *options) { o.exported = true } }

// Format returns the document for c
func Format(c *adx.Cube, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the document for c to w. Attribute order is fixed:
// orgUnit, period, dataSet, comment on groups and dataElement, value, then
// labels in aggregation order on data values
func Write(w io.Writer, c *adx.Cube, opts ...Option) error {
	if c == nil {
		return errors.New("adxml: nil cube")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkLabels(c); err != nil {
		return err
	}

	e := &emitter{w: bufio.NewWriter(w), o: o}
	e.open(0, "adx")
	if o.namespace != "" {
		e.attr("xmlns", o.namespace)
	}
	if o.exported {
		e.attr("exported", c.Exported.Format(time.RFC3339))
	}
	e.end(len(c.Groups) == 0)
	for _, g := range c.Groups {
		e.open(1, "group")
		e.attr("orgUnit", g.OrgUnit)
		e.attr("period", g.Period)
		e.attr("dataSet", g.DataSet)
		e.attr("comment", g.Comment)
		e.end(len(g.DataValues) == 0)
		for _, dv := range g.DataValues {
			e.open(2, "dataValue")
			e.attr("dataElement", dv.DataElement)
			e.attr("value", dv.Value)
			for _, a := range dv.Aggregations {
				e.attr(a.LabelName, a.LabelValue)
			}
			e.end(true)
		}
		if len(g.DataValues) > 0 {
			e.close(1, "group")
		}
	}
	if len(c.Groups) > 0 {
		e.close(0, "adx")
	}
	if e.o.indent != "" || e.o.prefix != "" {
		e.w.WriteByte('\n')
	}
	return e.flush()
}

func checkLabels(c *adx.Cube) error {
	for _, g := range c.Groups {
		for _, dv := range g.DataValues {
			seen := map[string]bool{"dataElement": true, "value": true}
			for _, a := range dv.Aggregations {
				if !validate.IsXMLName(a.LabelName) || seen[a.LabelName] {
					return fmt.Errorf("%w %q on %s/%s", ErrInvalidLabel, a.LabelName, g.OrgUnit, dv.DataElement)
				}
				seen[a.LabelName] = true
			}
		}
	}
	return nil
}

// emitter writes elements by hand so empty data values close as <dataValue ... />
type emitter struct {
	w     *bufio.Writer
	o     options
	err   error
	wrote bool
}

func (e *emitter) newline(depth int) {
	if e.o.indent == "" && e.o.prefix == "" {
		return
	}
	if e.wrote {
		e.w.WriteByte('\n')
	}
	e.w.WriteString(e.o.prefix)
	e.w.WriteString(strings.Repeat(e.o.indent, depth))
}

func (e *emitter) open(depth int, name string) {
	e.newline(depth)
	e.wrote = true
	e.w.WriteByte('<')
	e.w.WriteString(name)
}

func (e *emitter) attr(name, value string) {
	e.w.WriteByte(' ')
	e.w.WriteString(name)
	e.w.WriteString(`="`)
	if err := xml.EscapeText(e.w, []byte(norm.NFC.String(value))); err != nil && e.err == nil {
		e.err = err
	}
	e.w.WriteByte('"')
}

func (e *emitter) end(selfClose bool) {
	if selfClose {
		e.w.WriteString(" />")
		return
	}
	e.w.WriteByte('>')
}

func (e *emitter) close(depth int, name string) {
	e.newline(depth)
	e.w.WriteString("</")
	e.w.WriteString(name)
	e.w.WriteByte('>')
}

func (e *emitter) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}
