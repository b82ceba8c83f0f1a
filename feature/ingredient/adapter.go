package ingredient

import (
	"fmt"
	"sort"

	"formulary-manager/core/apperr"
	"formulary-manager/core/utils"
	"formulary-manager/feature/ingredient/models"
)

// nameAliases are the legacy field spellings tried, in order, when resolving
// an incoming record's name. Exporters from different eras used each of
// these.
var nameAliases = []string{"KEYNAME", "keyname", "Ingredient", "ingredient", "name"}

// ResolveName extracts the record name from a loosely-typed payload entry by
// walking the alias chain. Returns "" when no variant resolves.
func ResolveName(raw map[string]any) string {
	for _, alias := range nameAliases {
		if v, ok := raw[alias]; ok {
			if s := utils.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// AdaptIncoming maps an external payload entry onto the canonical incoming
// shape. It fails fast with a ValidationError when no name alias resolves;
// every other field degrades to its zero value rather than aborting.
func AdaptIncoming(raw map[string]any) (*models.IncomingRecord, error) {
	name := ResolveName(raw)
	if name == "" {
		return nil, fmt.Errorf("%w: no resolvable name (tried %v)", apperr.ErrValidation, nameAliases)
	}

	record := &models.IncomingRecord{
		Keyname:     name,
		DisplayName: firstString(raw, "displayName", "display_name", "DisplayName", "label"),
		Category:    firstString(raw, "category", "Category", "type"),
		Sections:    adaptSections(raw),
		Tests:       adaptTests(raw),
	}
	if record.DisplayName == "" {
		record.DisplayName = name
	}

	return record, nil
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := utils.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func adaptSections(raw map[string]any) []models.Section {
	items := rawList(raw, "sections", "Sections")
	sections := make([]models.Section, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		section := models.Section{
			Type:    firstString(entry, "type", "Type", "sectionType"),
			Content: firstString(entry, "content", "Content", "text"),
			Order:   i,
		}
		if v, ok := entry["order"]; ok {
			section.Order = utils.ToInt(v)
		}
		sections = append(sections, section)
	}

	// Stored order is identity; honor explicit order fields when present.
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	return sections
}

func adaptTests(raw map[string]any) []models.TestCase {
	items := rawList(raw, "tests", "Tests", "testCases")
	tests := make([]models.TestCase, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		test := models.TestCase{
			Name:     firstString(entry, "name", "Name"),
			Input:    firstString(entry, "input", "Input"),
			Expected: firstString(entry, "expected", "Expected", "output"),
			Order:    i,
		}
		if v, ok := entry["order"]; ok {
			test.Order = utils.ToInt(v)
		}
		tests = append(tests, test)
	}

	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].Order < tests[j].Order
	})

	return tests
}

func rawList(raw map[string]any, keys ...string) []any {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if list, ok := v.([]any); ok {
				return list
			}
		}
	}
	return nil
}
