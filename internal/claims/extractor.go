package claims

import (
	"strings"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/resolver"
)

// Evidence marks supporting-material signals found alongside a claim.
type Evidence struct {
	Document       bool
	OfficialSource bool
	Link           bool
}

// Penalties marks language that discounts a claim.
type Penalties struct {
	AbsoluteLanguage bool
	Sensational      bool
	Conspiracy       bool
}

// Candidate is one typed claim extracted from a post, before scoring.
type Candidate struct {
	Type      model.ClaimType
	Text      string
	Entity    *model.Entity
	Evidence  Evidence
	Penalties Penalties
}

type Extractor struct {
	resolver *resolver.Resolver
}

func NewExtractor(r *resolver.Resolver) *Extractor {
	return &Extractor{resolver: r}
}

// Extract tests every claim-type pattern table against title+body and emits
// at most one candidate per type. Types that require an entity mention are
// skipped when no known entity appears in the post.
func (e *Extractor) Extract(post dto.ClaimDraft) []Candidate {
	text := strings.TrimSpace(post.Title + "\n" + post.Body)
	if text == "" {
		return nil
	}

	entity := e.resolveEntity(text, post)
	evidence, penalties := markers(text)

	var candidates []Candidate
	for _, claimType := range claimTypeOrder {
		tp := claimPatterns[claimType]
		if tp.RequiresEntity && entity == nil {
			continue
		}
		for _, pattern := range tp.Patterns {
			if pattern.MatchString(text) {
				candidates = append(candidates, Candidate{
					Type:      claimType,
					Text:      text,
					Entity:    entity,
					Evidence:  evidence,
					Penalties: penalties,
				})
				break
			}
		}
	}
	return candidates
}

// Fallback wraps a post that matched no pattern table into a single untyped
// candidate. Trusted-press mirrors use it so every mirrored article leaves a
// claim behind even when the headline fits no known claim shape.
func (e *Extractor) Fallback(post dto.ClaimDraft) *Candidate {
	text := strings.TrimSpace(post.Title + "\n" + post.Body)
	if text == "" {
		return nil
	}

	evidence, penalties := markers(text)
	return &Candidate{
		Type:      model.ClaimOther,
		Text:      text,
		Entity:    e.resolveEntity(text, post),
		Evidence:  evidence,
		Penalties: penalties,
	}
}

func (e *Extractor) resolveEntity(text string, post dto.ClaimDraft) *model.Entity {
	entity := e.resolver.ResolveInText(text)
	if entity == nil && post.EntityHint != "" {
		entity = e.resolver.Resolve(post.EntityHint)
	}
	return entity
}

func markers(text string) (Evidence, Penalties) {
	evidence := Evidence{
		Document:       documentMarkers.MatchString(text),
		OfficialSource: officialMarkers.MatchString(text),
		Link:           linkMarkers.MatchString(text),
	}
	penalties := Penalties{
		AbsoluteLanguage: absoluteMarkers.MatchString(text),
		Sensational:      sensationalMarkers.MatchString(text),
		Conspiracy:       conspiracyMarkers.MatchString(text),
	}
	return evidence, penalties
}
