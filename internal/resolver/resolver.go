package resolver

import (
	"strings"

	"banksentinel/internal/model"
)

// Resolver maps identifiers (entity ID, registry ID, ticker, alias, name) to
// canonical entities. The registry is immutable after construction so lookups
// need no locking.
type Resolver struct {
	entities []model.Entity
	exact    map[string]*model.Entity
}

func New(entities []model.Entity) *Resolver {
	r := &Resolver{
		entities: entities,
		exact:    make(map[string]*model.Entity),
	}
	for i := range r.entities {
		e := &r.entities[i]
		r.index(e.ID, e)
		r.index(e.RegistryID, e)
		for _, ticker := range e.Tickers {
			r.index(ticker, e)
		}
		for _, alias := range e.Aliases {
			r.index(alias, e)
		}
		r.index(e.DisplayName, e)
	}
	return r
}

func (r *Resolver) index(key string, e *model.Entity) {
	key = normalize(key)
	if key == "" {
		return
	}
	if _, exists := r.exact[key]; !exists {
		r.exact[key] = e
	}
}

// Resolve returns the canonical entity for an identifier, or nil when nothing
// matches. Exact identifier match wins, then substring match on names and
// aliases. An unresolvable identifier is not an error.
func (r *Resolver) Resolve(identifier string) *model.Entity {
	key := normalize(identifier)
	if key == "" {
		return nil
	}

	if e, ok := r.exact[key]; ok {
		return e
	}

	for i := range r.entities {
		e := &r.entities[i]
		if strings.Contains(key, normalize(e.DisplayName)) || strings.Contains(normalize(e.DisplayName), key) {
			return e
		}
		for _, alias := range e.Aliases {
			if strings.Contains(key, normalize(alias)) {
				return e
			}
		}
	}
	return nil
}

// ResolveInText scans free text for the first recognizable entity mention.
func (r *Resolver) ResolveInText(text string) *model.Entity {
	lowered := normalize(text)
	if lowered == "" {
		return nil
	}
	for i := range r.entities {
		e := &r.entities[i]
		if mentioned(lowered, normalize(e.DisplayName)) {
			return e
		}
		for _, alias := range e.Aliases {
			if mentioned(lowered, normalize(alias)) {
				return e
			}
		}
		for _, ticker := range e.Tickers {
			if t := normalize(ticker); t != "" && containsWord(lowered, t) {
				return e
			}
		}
	}
	return nil
}

// mentioned matches short keys (tickers, acronyms) only on word boundaries
// so "Ag" does not fire inside "against".
func mentioned(text, key string) bool {
	if key == "" {
		return false
	}
	if len(key) < 4 {
		return containsWord(text, key)
	}
	return strings.Contains(text, key)
}

func (r *Resolver) All() []model.Entity {
	return r.entities
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsWord avoids ticker false positives inside longer words.
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isAlnum(text[start-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
