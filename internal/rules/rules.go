package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"irdbclean/internal"
)

// ErrCompile marks an invalid rule set. Compilation failures are fatal and
// must surface before any file is processed.
var ErrCompile = errors.New("rule set compilation failed")

// Reserved top-level keys of the rule-set document. Every other top-level key
// is a comma-separated list of wildcard category path patterns.
const (
	keyGroups     = "$groups"
	keyPathPrefix = "$path-prefix"
	groupRef      = "$group:"
)

// Matcher tests whether a raw button name maps to a canonical name. Group
// references are expanded at load time, so a compiled matcher is either a
// case-insensitive regex over the trimmed name or a case-insensitive literal.
type Matcher struct {
	re      *regexp.Regexp
	literal string
}

func (m Matcher) Match(name string) bool {
	trimmed := strings.TrimSpace(name)
	if m.re != nil {
		return m.re.MatchString(trimmed)
	}
	return strings.EqualFold(trimmed, m.literal)
}

// Rule is one canonical name with its ordered matchers.
type Rule struct {
	Canonical string
	Matchers  []Matcher
}

// Category is a set of renaming rules scoped to paths matching any of its
// wildcard patterns.
type Category struct {
	patterns []*regexp.Regexp
	rules    []Rule
}

// RuleSet is the compiled form of a rule-set document. Categories keep
// document order so merging is deterministic.
type RuleSet struct {
	pathPrefix string
	categories []Category
}

// Load reads and compiles a rule-set document from disk.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse compiles a rule-set document. All regexes and path patterns are
// compiled here; any invalid entry fails the whole set.
func Parse(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	if len(doc.Content) == 0 {
		return &RuleSet{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrCompile)
	}

	rs := &RuleSet{}

	// Groups first: categories may reference them regardless of position.
	groups := map[string][]Matcher{}
	for i := 0; i < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case keyGroups:
			parsed, err := parseGroups(value)
			if err != nil {
				return nil, err
			}
			groups = parsed
		case keyPathPrefix:
			rs.pathPrefix = strings.Trim(strings.ReplaceAll(value.Value, "\\", "/"), "/")
		}
	}

	for i := 0; i < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Value == keyGroups || key.Value == keyPathPrefix {
			continue
		}
		category, err := parseCategory(key.Value, value, groups)
		if err != nil {
			return nil, err
		}
		rs.categories = append(rs.categories, category)
	}
	return rs, nil
}

func parseGroups(node *yaml.Node) (map[string][]Matcher, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping", ErrCompile, keyGroups)
	}
	groups := map[string][]Matcher{}
	for i := 0; i < len(node.Content); i += 2 {
		name, list := node.Content[i].Value, node.Content[i+1]
		matchers, err := parseMatcherList(list, nil)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		groups[name] = matchers
	}
	return groups, nil
}

func parseCategory(patternList string, node *yaml.Node, groups map[string][]Matcher) (Category, error) {
	category := Category{}
	for _, raw := range strings.Split(patternList, ",") {
		pattern, err := compileWildcard(raw)
		if err != nil {
			return Category{}, err
		}
		category.patterns = append(category.patterns, pattern)
	}

	if node.Kind != yaml.MappingNode {
		return Category{}, fmt.Errorf("%w: category %q must be a mapping", ErrCompile, patternList)
	}
	for i := 0; i < len(node.Content); i += 2 {
		canonical, list := node.Content[i].Value, node.Content[i+1]
		matchers, err := parseMatcherList(list, groups)
		if err != nil {
			return Category{}, fmt.Errorf("category %q, name %q: %w", patternList, canonical, err)
		}
		category.rules = append(category.rules, Rule{Canonical: canonical, Matchers: matchers})
	}
	return category, nil
}

// parseMatcherList compiles one ordered matcher-string list. A nil groups map
// forbids group references, which keeps group definitions flat.
func parseMatcherList(node *yaml.Node, groups map[string][]Matcher) ([]Matcher, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: matcher list must be a sequence", ErrCompile)
	}
	var out []Matcher
	for _, item := range node.Content {
		raw := strings.TrimSpace(item.Value)
		switch {
		case strings.HasPrefix(raw, groupRef):
			if groups == nil {
				return nil, fmt.Errorf("%w: group reference %q inside %s", ErrCompile, raw, keyGroups)
			}
			name := strings.TrimSpace(strings.TrimPrefix(raw, groupRef))
			expanded, ok := groups[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown group %q", ErrCompile, name)
			}
			out = append(out, expanded...)
		case len(raw) > 1 && strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/"):
			body := raw[1 : len(raw)-1]
			re, err := regexp.Compile(`(?i)^(?:` + body + `)$`)
			if err != nil {
				return nil, fmt.Errorf("%w: regex %q: %v", ErrCompile, raw, err)
			}
			out = append(out, Matcher{re: re})
		default:
			out = append(out, Matcher{literal: raw})
		}
	}
	return out, nil
}

// compileWildcard translates a "*"-wildcard category pattern into a
// case-insensitive full-match regex.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path pattern", ErrCompile)
	}
	body := strings.ReplaceAll(regexp.QuoteMeta(trimmed), `\*`, `.*`)
	re, err := regexp.Compile(`(?i)^` + body + `$`)
	if err != nil {
		return nil, fmt.Errorf("%w: path pattern %q: %v", ErrCompile, trimmed, err)
	}
	return re, nil
}

// Empty reports whether the rule set has no categories at all.
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.categories) == 0
}

// tableFor merges the rule tables of every category matching the path.
// Category order and rule order come from the document; a canonical name seen
// again in a later category appends its matchers to the earlier entry.
func (rs *RuleSet) tableFor(relPath string) []Rule {
	path := strings.Trim(strings.ReplaceAll(relPath, "\\", "/"), "/")
	if rs.pathPrefix != "" {
		path = strings.Trim(strings.TrimPrefix(path, rs.pathPrefix), "/")
	}

	var table []Rule
	index := map[string]int{}
	for _, category := range rs.categories {
		if !category.matches(path) {
			continue
		}
		for _, rule := range category.rules {
			if at, ok := index[rule.Canonical]; ok {
				table[at].Matchers = append(table[at].Matchers, rule.Matchers...)
				continue
			}
			index[rule.Canonical] = len(table)
			table = append(table, Rule{Canonical: rule.Canonical, Matchers: append([]Matcher(nil), rule.Matchers...)})
		}
	}
	return table
}

func (c Category) matches(path string) bool {
	for _, pattern := range c.patterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// CanonicalName resolves a raw button name for a file path. The first
// canonical name whose matcher list contains any match wins.
func (rs *RuleSet) CanonicalName(relPath, name string) (string, bool) {
	return lookup(rs.tableFor(relPath), name)
}

// NormalizeFile rewrites record names to their canonical labels using the
// table scoped to relPath and returns the number of renamed records. Records
// with no matching rule are left unchanged.
func (rs *RuleSet) NormalizeFile(file *internal.SignalFile, relPath string) int {
	if rs.Empty() {
		return 0
	}
	table := rs.tableFor(relPath)
	if len(table) == 0 {
		return 0
	}

	renamed := 0
	for i := range file.Groups {
		record := &file.Groups[i].Record
		if record.Name == "" {
			continue
		}
		canonical, ok := lookup(table, record.Name)
		if !ok || canonical == record.Name {
			continue
		}
		record.Name = canonical
		if len(record.Lines) > 0 {
			record.Lines[0] = "name: " + canonical
		}
		renamed++
	}
	return renamed
}

func lookup(table []Rule, name string) (string, bool) {
	for _, rule := range table {
		for _, matcher := range rule.Matchers {
			if matcher.Match(name) {
				return rule.Canonical, true
			}
		}
	}
	return "", false
}
