package sourcemap

import (
	"sort"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Segment is one decoded mapping. Positions are zero-based and absolute.
type Segment struct {
	GeneratedColumn int
	HasSource       bool
	Source          int
	SourceLine      int
	SourceColumn    int
	HasName         bool
	Name            int
}

// Lines holds decoded segments per generated line.
type Lines [][]Segment

// DecodeMappings decodes a "mappings" string.
func DecodeMappings(mappings string) (Lines, error) {
	var (
		lines                                  Lines
		current                                []Segment
		source, sourceLine, sourceColumn, name int
	)

	pos := 0
	for pos <= len(mappings) {
		if pos == len(mappings) {
			lines = append(lines, current)
			break
		}

		switch mappings[pos] {
		case ';':
			lines = append(lines, current)
			current = nil
			pos++
			continue
		case ',':
			pos++
			continue
		}

		var fields [5]int
		n := 0
		for pos < len(mappings) && mappings[pos] != ',' && mappings[pos] != ';' {
			if n == len(fields) {
				return nil, errors.New(errors.ErrSourceMapParse, "mapping segment has more than 5 fields")
			}
			v, next, err := readVLQ(mappings, pos)
			if err != nil {
				return nil, err
			}
			fields[n] = v
			n++
			pos = next
		}

		if n != 1 && n != 4 && n != 5 {
			return nil, errors.Newf(errors.ErrSourceMapParse, "mapping segment has %d fields", n)
		}

		prevColumn := 0
		if len(current) > 0 {
			prevColumn = current[len(current)-1].GeneratedColumn
		}
		seg := Segment{GeneratedColumn: prevColumn + fields[0]}
		if n >= 4 {
			source += fields[1]
			sourceLine += fields[2]
			sourceColumn += fields[3]
			seg.HasSource = true
			seg.Source = source
			seg.SourceLine = sourceLine
			seg.SourceColumn = sourceColumn
		}
		if n == 5 {
			name += fields[4]
			seg.HasName = true
			seg.Name = name
		}
		current = append(current, seg)
	}

	return lines, nil
}

// EncodeMappings encodes decoded lines back into a "mappings" string.
// Segments within a line are written in generated-column order.
func EncodeMappings(lines Lines) string {
	var (
		sb                                     strings.Builder
		source, sourceLine, sourceColumn, name int
	)

	for i, line := range lines {
		if i > 0 {
			sb.WriteByte(';')
		}

		segs := append([]Segment(nil), line...)
		sort.SliceStable(segs, func(a, b int) bool {
			return segs[a].GeneratedColumn < segs[b].GeneratedColumn
		})

		column := 0
		for j, seg := range segs {
			if j > 0 {
				sb.WriteByte(',')
			}
			writeVLQ(&sb, seg.GeneratedColumn-column)
			column = seg.GeneratedColumn

			if !seg.HasSource {
				continue
			}
			writeVLQ(&sb, seg.Source-source)
			writeVLQ(&sb, seg.SourceLine-sourceLine)
			writeVLQ(&sb, seg.SourceColumn-sourceColumn)
			source, sourceLine, sourceColumn = seg.Source, seg.SourceLine, seg.SourceColumn

			if seg.HasName {
				writeVLQ(&sb, seg.Name-name)
				name = seg.Name
			}
		}
	}

	return sb.String()
}

// lookup finds the segment covering (line, column): the segment on that
// generated line with the greatest column not after column.
func (l Lines) lookup(line, column int) (Segment, bool) {
	if line < 0 || line >= len(l) {
		return Segment{}, false
	}
	segs := l[line]
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].GeneratedColumn > column
	})
	if i == 0 {
		return Segment{}, false
	}
	return segs[i-1], true
}

func (l Lines) sorted() Lines {
	out := make(Lines, len(l))
	for i, line := range l {
		segs := append([]Segment(nil), line...)
		sort.SliceStable(segs, func(a, b int) bool {
			return segs[a].GeneratedColumn < segs[b].GeneratedColumn
		})
		out[i] = segs
	}
	return out
}
