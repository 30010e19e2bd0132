package sourcemap

import (
	"bytes"
	"encoding/json"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Version is the only source map revision supported.
const Version = 3

// Map is a raw revision 3 source map.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a JSON source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrSourceMapParse, "invalid source map JSON")
	}
	if m.Version != Version {
		return nil, errors.Newf(errors.ErrSourceMapParse, "unsupported source map version %d", m.Version).
			WithDetail("version", m.Version)
	}
	return &m, nil
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := *m
	c.Sources = append([]string(nil), m.Sources...)
	c.Names = append([]string(nil), m.Names...)
	if m.SourcesContent != nil {
		c.SourcesContent = make([]*string, len(m.SourcesContent))
		for i, s := range m.SourcesContent {
			if s != nil {
				v := *s
				c.SourcesContent[i] = &v
			}
		}
	}
	return &c
}

// SourceContent returns the embedded content of source i, if any.
func (m *Map) SourceContent(i int) (string, bool) {
	if i < 0 || i >= len(m.SourcesContent) || m.SourcesContent[i] == nil {
		return "", false
	}
	return *m.SourcesContent[i], true
}

// Encode serializes m canonically: keys in the fixed order version, file,
// sourceRoot, sources, sourcesContent, names, mappings, optional ones
// omitted when empty, no insignificant whitespace and no HTML escaping.
// The output is byte-stable for equal maps.
func Encode(m *Map) ([]byte, error) {
	version := m.Version
	if version == 0 {
		version = Version
	}
	sources := m.Sources
	if sources == nil {
		sources = []string{}
	}
	names := m.Names
	if names == nil {
		names = []string{}
	}

	w := &objectWriter{}
	w.field("version", version)
	if m.File != "" {
		w.field("file", m.File)
	}
	if m.SourceRoot != "" {
		w.field("sourceRoot", m.SourceRoot)
	}
	w.field("sources", sources)
	if len(m.SourcesContent) > 0 {
		w.field("sourcesContent", m.SourcesContent)
	}
	w.field("names", names)
	w.field("mappings", m.Mappings)
	return w.finish()
}

// objectWriter writes a JSON object one key at a time so the key order is
// the call order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) field(key string, value interface{}) {
	if w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	w.value(key)
	w.buf.WriteByte(':')
	w.value(value)
}

func (w *objectWriter) value(v interface{}) {
	if w.err != nil {
		return
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		w.err = errors.Wrap(err, errors.ErrInternal, "cannot encode source map")
		return
	}
	w.buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
