package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

var (
	// ErrInvalidRule is returned for rules without a category, patterns or tags
	ErrInvalidRule = errors.New("invalid rule")
	// ErrDuplicateCategory is returned when a category already exists
	ErrDuplicateCategory = errors.New("duplicate category")
	// ErrRuleNotFound is returned when a category does not exist
	ErrRuleNotFound = errors.New("rule not found")
	// ErrRuleSetLocked is returned for edits while a scan holds the set
	ErrRuleSetLocked = errors.New("rule set is locked by an active scan")
)

// Rule is a named category with match patterns and output tags
type Rule struct {
	Category string   `yaml:"category" json:"category"`
	Patterns []string `yaml:"patterns" json:"patterns"`
	Tags     []string `yaml:"tags" json:"tags"`

	lowered  []string
	compiled []*regexp.Regexp // nil where a pattern is literal or not a valid regex
}

// Validate checks the rule invariants
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: empty category", ErrInvalidRule)
	}
	if len(nonEmpty(r.Patterns)) == 0 {
		return fmt.Errorf("%w: category %q has no patterns", ErrInvalidRule, r.Category)
	}
	if len(nonEmpty(r.Tags)) == 0 {
		return fmt.Errorf("%w: category %q has no tags", ErrInvalidRule, r.Category)
	}
	return nil
}

// compile normalises patterns and tags and prepares regular expressions.
// Only patterns holding regex syntax beyond a plain dot are compiled, so
// ".log" stays a literal suffix and does not match "catalog".
func (r *Rule) compile() {
	r.Category = strings.TrimSpace(r.Category)
	r.Patterns = nonEmpty(r.Patterns)
	r.Tags = lowerAll(nonEmpty(r.Tags))

	r.lowered = make([]string, len(r.Patterns))
	r.compiled = make([]*regexp.Regexp, len(r.Patterns))
	for i, p := range r.Patterns {
		r.lowered[i] = strings.ToLower(p)
		if !IsRegexPattern(p) {
			continue
		}
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			r.compiled[i] = re
		}
	}
}

// IsRegexPattern reports whether a pattern uses regular expression syntax
func IsRegexPattern(p string) bool {
	return strings.ContainsAny(p, `^$*+?()[]{}|\`)
}

// Matches reports whether any pattern matches the name or path, ignoring case.
// A pattern matches as a substring first, then as a regular expression.
func (r *Rule) Matches(name, path string) bool {
	if len(r.compiled) != len(r.Patterns) {
		r.compile()
	}

	lname := strings.ToLower(name)
	lpath := strings.ToLower(path)

	for i, p := range r.lowered {
		if strings.Contains(lname, p) || strings.Contains(lpath, p) {
			return true
		}
		if re := r.compiled[i]; re != nil {
			if re.MatchString(name) || re.MatchString(path) {
				return true
			}
		}
	}
	return false
}

func (r *Rule) clone() *Rule {
	c := &Rule{
		Category: r.Category,
		Patterns: append([]string(nil), r.Patterns...),
		Tags:     append([]string(nil), r.Tags...),
	}
	c.compile()
	return c
}

// RuleSet is an ordered, editable collection of rules.
// It is safe for concurrent use. While frozen, edits fail with ErrRuleSetLocked.
type RuleSet struct {
	mu     sync.RWMutex
	rules  []*Rule
	byName map[string]*Rule
	frozen int
}

// NewRuleSet creates an empty rule set
func NewRuleSet() *RuleSet {
	return &RuleSet{
		byName: make(map[string]*Rule),
	}
}

// Default returns a rule set holding the built-in vocabulary
func Default() *RuleSet {
	rs := NewRuleSet()
	for _, r := range DefaultRules() {
		// Built-in rules are valid and unique
		_ = rs.Add(r)
	}
	return rs
}

// FromConfig builds a rule set from stored rules. An empty list yields the defaults.
func FromConfig(stored []config.RuleConfig) (*RuleSet, error) {
	if len(stored) == 0 {
		return Default(), nil
	}

	rs := NewRuleSet()
	for _, rc := range stored {
		if err := rs.Add(Rule{Category: rc.Category, Patterns: rc.Patterns, Tags: rc.Tags}); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// ToConfig returns the rules in their stored form
func (rs *RuleSet) ToConfig() []config.RuleConfig {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]config.RuleConfig, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, config.RuleConfig{
			Category: r.Category,
			Patterns: append([]string(nil), r.Patterns...),
			Tags:     append([]string(nil), r.Tags...),
		})
	}
	return out
}

// Add appends a rule; the category must be new
func (rs *RuleSet) Add(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frozen > 0 {
		return ErrRuleSetLocked
	}

	rule := r.clone()
	key := strings.ToLower(rule.Category)
	if _, exists := rs.byName[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, rule.Category)
	}

	rs.rules = append(rs.rules, rule)
	rs.byName[key] = rule
	return nil
}

// Update replaces the patterns and tags of an existing category, keeping its position
func (rs *RuleSet) Update(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frozen > 0 {
		return ErrRuleSetLocked
	}

	key := strings.ToLower(strings.TrimSpace(r.Category))
	old, ok := rs.byName[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, r.Category)
	}

	rule := r.clone()
	rule.Category = old.Category
	for i, existing := range rs.rules {
		if existing == old {
			rs.rules[i] = rule
			break
		}
	}
	rs.byName[key] = rule
	return nil
}

// Remove deletes a category
func (rs *RuleSet) Remove(category string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frozen > 0 {
		return ErrRuleSetLocked
	}

	key := strings.ToLower(strings.TrimSpace(category))
	old, ok := rs.byName[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, category)
	}

	delete(rs.byName, key)
	for i, existing := range rs.rules {
		if existing == old {
			rs.rules = append(rs.rules[:i], rs.rules[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of a rule by category
func (rs *RuleSet) Get(category string) (Rule, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.byName[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return Rule{}, false
	}
	return *r.clone(), true
}

// Rules returns copies of all rules in evaluation order
func (rs *RuleSet) Rules() []Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, *r.clone())
	}
	return out
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rules)
}

// Freeze blocks edits until the returned release function is called.
// Freezes nest; release is idempotent.
func (rs *RuleSet) Freeze() (release func()) {
	rs.mu.Lock()
	rs.frozen++
	rs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			rs.mu.Lock()
			rs.frozen--
			rs.mu.Unlock()
		})
	}
}

// Frozen reports whether a scan currently holds the set
func (rs *RuleSet) Frozen() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.frozen > 0
}

// Match evaluates every category against a file name and path and returns
// the matched categories and their tags, in rule order. Within a category
// the first matching pattern wins.
func (rs *RuleSet) Match(name, path string) (categories []string, tags []string) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, r := range rs.rules {
		if r.Matches(name, path) {
			categories = append(categories, r.Category)
			tags = append(tags, r.Tags...)
		}
	}
	return categories, tags
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
