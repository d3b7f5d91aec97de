package overrides

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/sfomuseum/go-dropbox-photomap/normalize"
	"github.com/tidwall/gjson"
	"github.com/whosonfirst/go-reader/v2"
)

// type Rule assigns a title and description to images matching either an exact filename or a pattern.
type Rule struct {
	// The normalized base filename to match exactly.
	Filename string
	// A regular expression to match against the normalized base filename.
	Pattern *regexp.Regexp
	// The title to assign to matching images.
	Title string
	// The description to assign to matching images.
	Description string
}

// type Rules is an ordered list of Rule instances.
type Rules struct {
	rules []*Rule
}

// NewRules returns a new Rules instance. Rule filenames are normalized.
func NewRules(rules ...*Rule) *Rules {

	for _, r := range rules {
		if r.Filename != "" {
			r.Filename = normalize.Normalize(r.Filename)
		}
	}

	return &Rules{
		rules: rules,
	}
}

// Len returns the number of rules.
func (rs *Rules) Len() int {

	if rs == nil {
		return 0
	}

	return len(rs.rules)
}

// RuleKey returns the key rules are matched against for 'name': its normalized base filename.
func RuleKey(name string) string {
	return normalize.Normalize(filepath.Base(name))
}

// Match returns the rule for 'name'. A rule whose filename matches exactly is preferred over any
// pattern match; otherwise the first rule (in order) whose pattern matches is returned.
func (rs *Rules) Match(name string) (*Rule, bool) {

	if rs == nil {
		return nil, false
	}

	key := RuleKey(name)

	for _, r := range rs.rules {

		if r.Filename != "" && r.Filename == key {
			return r, true
		}
	}

	for _, r := range rs.rules {

		if r.Pattern != nil && r.Pattern.MatchString(key) {
			return r, true
		}
	}

	return nil, false
}

// LoadRules reads a JSON array of { "filename"?, "pattern"?, "title", "description" } records from 'path'
// using 'r'. A missing file yields an empty Rules instance. Invalid JSON or invalid patterns are errors.
func LoadRules(ctx context.Context, r reader.Reader, path string) (*Rules, error) {

	body, err := readOptional(ctx, r, path)

	if err != nil {
		return nil, err
	}

	if body == nil {
		return NewRules(), nil
	}

	return ParseRules(body)
}

// ParseRules parses 'body' as a JSON-encoded list of rules.
func ParseRules(body []byte) (*Rules, error) {

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Invalid JSON for rules")
	}

	doc := gjson.ParseBytes(body)

	if !doc.IsArray() {
		return nil, fmt.Errorf("Rules must be a JSON array")
	}

	rules := make([]*Rule, 0)

	for i, v := range doc.Array() {

		r := &Rule{
			Filename:    v.Get("filename").String(),
			Title:       v.Get("title").String(),
			Description: v.Get("description").String(),
		}

		pattern := v.Get("pattern").String()

		if pattern != "" {

			re, err := regexp.Compile(pattern)

			if err != nil {
				return nil, fmt.Errorf("Invalid pattern for rule %d, %w", i, err)
			}

			r.Pattern = re
		}

		if r.Filename == "" && r.Pattern == nil {
			return nil, fmt.Errorf("Rule %d has neither a filename nor a pattern", i)
		}

		rules = append(rules, r)
	}

	return NewRules(rules...), nil
}
