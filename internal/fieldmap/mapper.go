package fieldmap

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

var idFragment = regexp.MustCompile(`#([A-Za-z_][\w\-]*)`)

// Mapper maps flattened observations to a canonical record.
type Mapper struct {
	rules    []Rule
	groups   []PartGroup
	bySel    map[string]string
	byID     map[string]string
	partOf   map[string]bool
	fallback map[string][]string
}

// New builds a mapper from rules and part groups.
func New(rules []Rule, groups []PartGroup) *Mapper {
	m := &Mapper{
		rules:    rules,
		groups:   groups,
		bySel:    make(map[string]string),
		byID:     make(map[string]string),
		partOf:   make(map[string]bool),
		fallback: make(map[string][]string),
	}
	for _, r := range rules {
		for _, sel := range r.Selectors {
			m.bySel[strings.TrimSpace(sel)] = r.Field
			if id := lastID(sel); id != "" {
				m.byID[strings.ToLower(id)] = r.Field
			}
		}
		for _, k := range r.FallbackKeys {
			m.fallback[r.Field] = append(m.fallback[r.Field], normaliseKey(k))
		}
	}
	for _, g := range groups {
		for _, p := range g.Parts {
			m.partOf[p] = true
		}
	}
	return m
}

// Default returns a mapper over DefaultRules and DefaultGroups.
func Default() *Mapper {
	return New(DefaultRules, DefaultGroups)
}

// Map runs the four mapping steps over a flattened field set and a
// diagnostic dump.
func (m *Mapper) Map(flat domain.FlatFieldSet, diagnostics map[string]string) domain.MappedRecord {
	resolved := make(map[string]string)
	direct := make(map[string]bool)
	structural := make(map[string][]string)

	// 1. Direct and id-fragment matches.
	for _, f := range flat {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		if field, ok := m.resolve(f.Selector); ok {
			resolved[field] = value
			direct[field] = true
			continue
		}
		if g := m.structuralGroup(f.Selector); g != nil {
			structural[g.Field] = append(structural[g.Field], value)
		}
	}

	// 2. Diagnostic fallback for anything still unresolved.
	if len(diagnostics) > 0 {
		diag := make(map[string]string, len(diagnostics))
		for k, v := range diagnostics {
			if v = strings.TrimSpace(v); v != "" {
				diag[normaliseKey(k)] = v
			}
		}
		for _, r := range m.rules {
			if _, ok := resolved[r.Field]; ok {
				continue
			}
			for _, key := range m.fallback[r.Field] {
				if v, ok := diag[key]; ok {
					resolved[r.Field] = v
					break
				}
			}
		}
	}

	// 3. Multi-part reconstruction. Complete named parts win, unless the
	// whole identifier was matched directly and the parts only came from
	// the diagnostic fallback. Partial parts never beat a whole value.
	for _, g := range m.groups {
		named := make([]string, 0, len(g.Parts))
		partsDirect := true
		for _, p := range g.Parts {
			if v, ok := resolved[p]; ok {
				named = append(named, v)
				partsDirect = partsDirect && direct[p]
			}
		}
		complete := len(named) == len(g.Parts)

		switch {
		case complete && (!direct[g.Field] || partsDirect):
			resolved[g.Field] = strings.Join(named, g.Delimiter)
		case resolved[g.Field] != "":
			// A single field already holds the identifier.
		case len(structural[g.Field]) > 0:
			resolved[g.Field] = strings.Join(structural[g.Field], g.Delimiter)
		case len(named) > 0:
			logger.Warn("fieldmap: %s rebuilt from %d of %d parts", g.Field, len(named), len(g.Parts))
			resolved[g.Field] = strings.Join(named, g.Delimiter)
		}
	}

	out := make(domain.MappedRecord, len(resolved))
	for field, v := range resolved {
		if m.partOf[field] {
			continue
		}
		out[field] = v
	}

	// 4. Derived composition.
	if addr, city := out[domain.FieldAddress], out[domain.FieldCity]; addr != "" && city != "" {
		if !strings.Contains(strings.ToLower(addr), strings.ToLower(city)) {
			out[domain.FieldAddress] = strings.TrimRight(addr, " ,") + ", " + city
		}
	}

	return out
}

// resolve maps a selector to a field by exact match, then by id fragment.
func (m *Mapper) resolve(selector string) (string, bool) {
	selector = strings.TrimSpace(selector)
	if field, ok := m.bySel[selector]; ok {
		return field, true
	}
	if id := lastID(selector); id != "" {
		if field, ok := m.byID[strings.ToLower(id)]; ok {
			return field, true
		}
	}
	return "", false
}

// structuralGroup returns the part group whose pattern matches the selector's id.
func (m *Mapper) structuralGroup(selector string) *PartGroup {
	id := lastID(selector)
	if id == "" {
		return nil
	}
	for i := range m.groups {
		if g := &m.groups[i]; g.Structural != nil && g.Structural.MatchString(id) {
			return g
		}
	}
	return nil
}

// lastID returns the last "#id" fragment of a selector without the hash.
func lastID(selector string) string {
	matches := idFragment.FindAllStringSubmatch(selector, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// normaliseKey lower-cases a key and strips everything but letters and digits.
func normaliseKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Map maps with the default rules.
func Map(flat domain.FlatFieldSet, diagnostics map[string]string) domain.MappedRecord {
	return Default().Map(flat, diagnostics)
}
