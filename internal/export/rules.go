// Package export renders stored POIs as an OSM XML document and post-processes
// reviewed documents.
package export

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/poideck/internal/model"
)

// Rules maps a category slug to the tags its nodes receive, in file order.
type Rules map[string][]model.Tag

// LoadRules reads a TOML rule file with one table per category:
//
//	[bench]
//	amenity = "bench"
//	backrest = "yes"
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	rules, err := ParseRules(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes rule file contents.
func ParseRules(data string) (Rules, error) {
	var raw map[string]map[string]string
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, err
	}
	rules := make(Rules, len(raw))
	for category := range raw {
		rules[category] = []model.Tag{}
	}
	for _, key := range md.Keys() {
		if len(key) != 2 {
			continue
		}
		category, tagKey := key[0], key[1]
		rules[category] = append(rules[category], model.Tag{Key: tagKey, Value: raw[category][tagKey]})
	}
	return rules, nil
}

// Tags returns the tags for category.
func (r Rules) Tags(category string) ([]model.Tag, bool) {
	tags, ok := r[category]
	return tags, ok
}
