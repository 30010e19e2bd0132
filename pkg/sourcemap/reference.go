package sourcemap

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// DefaultMarker is the comment key pointing at a source map.
const DefaultMarker = "sourceMappingURL"

const inlinePrefix = "data:application/json;base64,"

// Reference is a source map reference comment found in file contents.
type Reference struct {
	URL string
	// Start and End delimit the comment line within the contents.
	Start, End int
}

// IsInline reports whether the reference embeds the map as a data URL.
func (r Reference) IsInline() bool {
	return strings.HasPrefix(r.URL, "data:")
}

// Data decodes the map embedded in an inline reference.
func (r Reference) Data() ([]byte, error) {
	return DecodeDataURL(r.URL)
}

var (
	referenceMu       sync.Mutex
	referencePatterns = map[string]*regexp.Regexp{}
)

func referencePattern(marker string) *regexp.Regexp {
	referenceMu.Lock()
	defer referenceMu.Unlock()

	if re, ok := referencePatterns[marker]; ok {
		return re
	}
	m := regexp.QuoteMeta(marker)
	re := regexp.MustCompile(`(?m)^[ \t]*(?://[#@][ \t]+` + m + `=([^\s'"]+)[ \t]*|/\*[#@][ \t]+` + m + `=([^\s*]+)[ \t]*\*/[ \t]*)\r?$`)
	referencePatterns[marker] = re
	return re
}

// FindReference returns the last reference comment using marker.
func FindReference(contents, marker string) (Reference, bool) {
	if marker == "" {
		marker = DefaultMarker
	}
	matches := referencePattern(marker).FindAllStringSubmatchIndex(contents, -1)
	if len(matches) == 0 {
		return Reference{}, false
	}

	last := matches[len(matches)-1]
	ref := Reference{Start: last[0], End: last[1]}
	switch {
	case last[2] >= 0:
		ref.URL = contents[last[2]:last[3]]
	case last[4] >= 0:
		ref.URL = contents[last[4]:last[5]]
	}
	return ref, true
}

// StripReferences removes every reference comment using marker, along
// with the line break before it.
func StripReferences(contents, marker string) string {
	if marker == "" {
		marker = DefaultMarker
	}
	re := referencePattern(marker)
	matches := re.FindAllStringIndex(contents, -1)
	if len(matches) == 0 {
		return contents
	}

	var sb strings.Builder
	prev := 0
	for _, m := range matches {
		start := m[0]
		if start > prev && contents[start-1] == '\n' {
			start--
			if start > prev && contents[start-1] == '\r' {
				start--
			}
		}
		sb.WriteString(contents[prev:start])
		prev = m[1]
	}
	sb.WriteString(contents[prev:])
	return sb.String()
}

// AppendReference appends a reference comment pointing at url after
// removing existing ones.
func AppendReference(contents, marker, url string) string {
	if marker == "" {
		marker = DefaultMarker
	}
	return StripReferences(contents, marker) + "\n//# " + marker + "=" + url
}

// InlineURL encodes an encoded map as a base64 data URL.
func InlineURL(encoded []byte) string {
	return inlinePrefix + base64.StdEncoding.EncodeToString(encoded)
}

// DecodeDataURL decodes a data URL, base64 or percent-encoded.
func DecodeDataURL(dataURL string) ([]byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, errors.Newf(errors.ErrSourceMapParse, "not a data URL: %.40s", dataURL)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New(errors.ErrSourceMapParse, "data URL has no payload")
	}

	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrSourceMapParse, "invalid base64 in data URL")
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSourceMapParse, "invalid escape in data URL")
	}
	return []byte(data), nil
}
