package glob

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/pattern"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/paths"
)

// Options controls how globs are compiled.
type Options struct {
	// CaseSensitive selects case-sensitive matching.
	CaseSensitive bool `koanf:"case_sensitive" mapstructure:"case_sensitive"`
	// Dot lets wildcards match path segments starting with a dot.
	Dot bool `koanf:"dot" mapstructure:"dot"`
}

// DefaultOptions matches case-sensitively and skips dot files.
func DefaultOptions() Options {
	return Options{CaseSensitive: true}
}

type rule struct {
	source   string
	re       *regexp.Regexp
	negate   bool
	allowDot bool
}

// Matcher is a compiled set of globs. A path matches when it matches at
// least one positive glob and no negated ("!"-prefixed) glob. A matcher
// made only of negated globs matches everything they do not exclude.
type Matcher struct {
	rules    []rule
	positive int
	opts     Options
}

// Compile compiles globs into a Matcher. Globs use shell syntax with "**"
// matching any number of directories and "{a,b}" alternatives.
func Compile(globs []string, opts Options) (*Matcher, error) {
	m := &Matcher{opts: opts}
	for _, g := range globs {
		r, err := compileRule(g, opts)
		if err != nil {
			return nil, err
		}
		if !r.negate {
			m.positive++
		}
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// Match compiles globs and returns the matcher as a predicate over
// slash-separated relative paths.
func Match(opts Options, globs ...string) (func(relativePath string) bool, error) {
	m, err := Compile(globs, opts)
	if err != nil {
		return nil, err
	}
	return m.Match, nil
}

func compileRule(g string, opts Options) (rule, error) {
	r := rule{source: g}
	if strings.HasPrefix(g, "!") {
		r.negate = true
		g = g[1:]
	}
	g = strings.TrimPrefix(g, "./")
	if g == "" {
		return rule{}, errors.Newf(errors.ErrInvalidInput, "empty glob %q", r.source)
	}

	expr, err := pattern.Regexp(g, pattern.Filenames|pattern.Braces)
	if err != nil {
		return rule{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid glob %q", r.source)
	}

	expr = "^" + expr + "$"
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return rule{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid glob %q", r.source)
	}
	r.re = re
	r.allowDot = opts.Dot || mentionsDotSegment(g)
	return r, nil
}

// Match reports whether the slash-separated relative path matches.
func (m *Matcher) Match(relativePath string) bool {
	relativePath = strings.TrimPrefix(relativePath, "./")
	hidden := hasDotSegment(relativePath)

	matched := m.positive == 0
	for _, r := range m.rules {
		if hidden && !r.allowDot && !r.negate {
			continue
		}
		if !r.re.MatchString(relativePath) {
			continue
		}
		if r.negate {
			return false
		}
		matched = true
	}
	return matched
}

// Globs returns the source globs in compile order.
func (m *Matcher) Globs() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.source
	}
	return out
}

func hasDotSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg != "." && seg != ".." && paths.IsHiddenPath(seg) {
			return true
		}
	}
	return false
}

func mentionsDotSegment(glob string) bool {
	return strings.HasPrefix(glob, ".") || strings.Contains(glob, "/.")
}
