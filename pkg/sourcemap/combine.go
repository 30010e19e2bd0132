package sourcemap

import (
	"path"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// CombineOptions controls how a map is traced through its ancestor.
type CombineOptions struct {
	// Target is the entry of child.Sources that the ancestor map describes.
	// When empty, the ancestor's file name is used, and failing that the
	// child's only source.
	Target string
	// ChildSource and AncestorSource map source names (joined with their
	// map's sourceRoot) to names in the combined map. Identity when nil.
	ChildSource    func(string) string
	AncestorSource func(string) string
}

// Combine returns a map from child's generated file straight to the
// sources described by ancestor. Segments pointing into the target source
// are traced through ancestor; when ancestor has no mapping for a position
// the segment keeps pointing at the intermediate source. Names come from
// the ancestor when it has one for the traced position.
func Combine(child, ancestor *Map, opts CombineOptions) (*Map, error) {
	childLines, err := DecodeMappings(child.Mappings)
	if err != nil {
		return nil, err
	}
	ancestorLines, err := DecodeMappings(ancestor.Mappings)
	if err != nil {
		return nil, err
	}
	ancestorLines = ancestorLines.sorted()

	target := targetIndex(child, ancestor, opts.Target)

	b := newBuilder()
	childSource := sourceNamer(child.SourceRoot, opts.ChildSource)
	ancestorSource := sourceNamer(ancestor.SourceRoot, opts.AncestorSource)

	out := make(Lines, len(childLines))
	for i, line := range childLines {
		segs := make([]Segment, 0, len(line))
		for _, seg := range line {
			if !seg.HasSource {
				segs = append(segs, Segment{GeneratedColumn: seg.GeneratedColumn})
				continue
			}
			if err := checkSegment(child, seg); err != nil {
				return nil, err
			}

			if seg.Source == target {
				if orig, ok := ancestorLines.lookup(seg.SourceLine, seg.SourceColumn); ok && orig.HasSource {
					if err := checkSegment(ancestor, orig); err != nil {
						return nil, err
					}
					traced := Segment{
						GeneratedColumn: seg.GeneratedColumn,
						HasSource:       true,
						Source:          b.source(ancestorSource(ancestor.Sources[orig.Source]), ancestor, orig.Source),
						SourceLine:      orig.SourceLine,
						SourceColumn:    orig.SourceColumn,
					}
					switch {
					case orig.HasName:
						traced.HasName, traced.Name = true, b.name(ancestor.Names[orig.Name])
					case seg.HasName:
						traced.HasName, traced.Name = true, b.name(child.Names[seg.Name])
					}
					segs = append(segs, traced)
					continue
				}
			}

			kept := seg
			kept.Source = b.source(childSource(child.Sources[seg.Source]), child, seg.Source)
			if seg.HasName {
				kept.Name = b.name(child.Names[seg.Name])
			}
			segs = append(segs, kept)
		}
		out[i] = segs
	}

	combined := &Map{
		Version:  Version,
		File:     child.File,
		Sources:  b.sources,
		Names:    b.names,
		Mappings: EncodeMappings(out),
	}
	if b.hasContent {
		combined.SourcesContent = b.contents
	}
	return combined, nil
}

func targetIndex(child, ancestor *Map, target string) int {
	if target == "" && ancestor.File != "" {
		target = ancestor.File
	}
	if target != "" {
		for i, s := range child.Sources {
			if s == target || path.Join(child.SourceRoot, s) == target {
				return i
			}
		}
	}
	if len(child.Sources) == 1 {
		return 0
	}
	return -1
}

func checkSegment(m *Map, seg Segment) error {
	if seg.Source < 0 || seg.Source >= len(m.Sources) {
		return errors.Newf(errors.ErrSourceMapParse, "mapping references source %d of %d", seg.Source, len(m.Sources))
	}
	if seg.HasName && (seg.Name < 0 || seg.Name >= len(m.Names)) {
		return errors.Newf(errors.ErrSourceMapParse, "mapping references name %d of %d", seg.Name, len(m.Names))
	}
	return nil
}

func sourceNamer(root string, fn func(string) string) func(string) string {
	return func(s string) string {
		if root != "" && !strings.Contains(s, "://") {
			s = path.Join(root, s)
		}
		if fn != nil {
			return fn(s)
		}
		return s
	}
}

// builder interns sources and names for a combined map.
type builder struct {
	sources     []string
	contents    []*string
	hasContent  bool
	sourceIndex map[string]int
	names       []string
	nameIndex   map[string]int
}

func newBuilder() *builder {
	return &builder{
		sources:     []string{},
		names:       []string{},
		sourceIndex: map[string]int{},
		nameIndex:   map[string]int{},
	}
}

func (b *builder) source(name string, from *Map, i int) int {
	if idx, ok := b.sourceIndex[name]; ok {
		if b.contents[idx] == nil {
			b.setContent(idx, from, i)
		}
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, name)
	b.contents = append(b.contents, nil)
	b.sourceIndex[name] = idx
	b.setContent(idx, from, i)
	return idx
}

func (b *builder) setContent(idx int, from *Map, i int) {
	if content, ok := from.SourceContent(i); ok {
		b.contents[idx] = &content
		b.hasContent = true
	}
}

func (b *builder) name(name string) int {
	if idx, ok := b.nameIndex[name]; ok {
		return idx
	}
	idx := len(b.names)
	b.names = append(b.names, name)
	b.nameIndex[name] = idx
	return idx
}
