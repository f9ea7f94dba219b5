// Package refdata resolves the free-text labels found in published tables
// (region names, nationality names) to stable reference-entity IDs.
//
// Resolution never drops a fact for want of a match: an unknown label gets
// a minimal stub entity, minted once per resolver lifetime. Stub creation
// is surfaced on the Resolution so callers and tests can observe minting.
// Near-miss spellings across releases can still mint duplicate stubs; there
// is no automatic merge, only the fuzzy pre-pass to shrink the window.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/mward/statingest/internal/store"
)

// ErrReservedLabel marks aggregate labels ("Total", "United Kingdom") that
// must not resolve to an entity. Adapters treat these rows as national
// aggregates or drop them, never as regions.
var ErrReservedLabel = errors.New("reserved aggregate label")

// reservedLabels in normalized form.
var reservedLabels = map[string]bool{
	"total":            true,
	"grand total":      true,
	"all":              true,
	"uk":               true,
	"united kingdom":   true,
	"england":          true,
	"scotland":         true,
	"wales":            true,
	"northern ireland": true,
	"unknown":          true,
	"not known":        true,
	"other":            true,
}

// similarityFloor is the minimum levenshtein similarity for a fuzzy region
// match. Below it, the label mints a stub instead of risking a bad link.
const similarityFloor = 0.6

// Resolution is the outcome of resolving one label.
type Resolution struct {
	ID      int64
	Created bool // a stub entity was minted for this label
}

// Resolver resolves labels against the reference tables in a Store.
//
// A Resolver is scoped to one pipeline run: its memo caches guarantee that
// the same unknown label yields the same stub ID throughout the run, and
// they also spare the store repeated lookups for the label that appears in
// every row.
type Resolver struct {
	store *store.Store

	authorityMemo   map[string]Resolution
	nationalityMemo map[string]Resolution
}

// NewResolver creates a resolver backed by st.
func NewResolver(st *store.Store) *Resolver {
	return &Resolver{
		store:           st,
		authorityMemo:   make(map[string]Resolution),
		nationalityMemo: make(map[string]Resolution),
	}
}

// ResolveAuthority maps a region label to a local-authority ID.
// Order: memo, exact (canonical or normalized name), fuzzy above the
// similarity floor, stub.
func (r *Resolver) ResolveAuthority(ctx context.Context, label string) (Resolution, error) {
	label = strings.TrimSpace(label)
	normalized := Normalize(label)
	if normalized == "" {
		return Resolution{}, fmt.Errorf("empty region label")
	}
	if reservedLabels[normalized] {
		return Resolution{}, fmt.Errorf("label %q: %w", label, ErrReservedLabel)
	}
	if res, ok := r.authorityMemo[normalized]; ok {
		return res, nil
	}

	la, err := r.store.FindLocalAuthority(ctx, label, normalized)
	switch {
	case err == nil:
		res := Resolution{ID: la.ID}
		r.authorityMemo[normalized] = res
		return res, nil
	case !errors.Is(err, store.ErrEntityNotFound):
		return Resolution{}, err
	}

	if id, ok, err := r.fuzzyAuthority(ctx, normalized); err != nil {
		return Resolution{}, err
	} else if ok {
		res := Resolution{ID: id}
		r.authorityMemo[normalized] = res
		return res, nil
	}

	id, err := r.store.InsertLocalAuthority(ctx, store.LocalAuthority{
		Code:           stubCode("LA", normalized),
		Name:           label,
		NormalizedName: normalized,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("mint stub authority for %q: %w", label, err)
	}
	res := Resolution{ID: id, Created: true}
	r.authorityMemo[normalized] = res
	return res, nil
}

// fuzzyAuthority ranks every known authority by similarity to the
// normalized label and returns the best candidate above the floor.
func (r *Resolver) fuzzyAuthority(ctx context.Context, normalized string) (int64, bool, error) {
	authorities, err := r.store.ListLocalAuthorities(ctx)
	if err != nil {
		return 0, false, err
	}

	bestID := int64(0)
	bestScore := 0.0
	for _, la := range authorities {
		score := similarity(normalized, la.NormalizedName)
		if score > bestScore {
			bestScore = score
			bestID = la.ID
		}
	}
	if bestScore >= similarityFloor {
		return bestID, true, nil
	}
	return 0, false, nil
}

// ResolveNationality maps a nationality label to a nationality ID.
// Exact match only; nationality spellings are stable enough that fuzzy
// matching causes more harm (Niger vs Nigeria) than it prevents.
func (r *Resolver) ResolveNationality(ctx context.Context, label string) (Resolution, error) {
	label = strings.TrimSpace(label)
	normalized := Normalize(label)
	if normalized == "" {
		return Resolution{}, fmt.Errorf("empty nationality label")
	}
	if reservedLabels[normalized] {
		return Resolution{}, fmt.Errorf("label %q: %w", label, ErrReservedLabel)
	}
	if res, ok := r.nationalityMemo[normalized]; ok {
		return res, nil
	}

	n, err := r.store.FindNationality(ctx, label, normalized)
	switch {
	case err == nil:
		res := Resolution{ID: n.ID}
		r.nationalityMemo[normalized] = res
		return res, nil
	case !errors.Is(err, store.ErrEntityNotFound):
		return Resolution{}, err
	}

	id, err := r.store.InsertNationality(ctx, store.Nationality{
		ISOCode:        stubCode("XX", normalized),
		Name:           label,
		NormalizedName: normalized,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("mint stub nationality for %q: %w", label, err)
	}
	res := Resolution{ID: id, Created: true}
	r.nationalityMemo[normalized] = res
	return res, nil
}

// stubCode builds a deterministic code for a minted entity so re-running
// against the same label converges on one stub per spelling.
func stubCode(prefix, normalized string) string {
	return prefix + "-STUB-" + Slug(normalized)
}

// similarity is 1 - normalized levenshtein distance, in [0, 1]. Lengths are
// counted in runes to match ComputeDistance's rune semantics.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
