package services

import (
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
	"slices"
	"strings"
)

// TruckCatalog is an immutable in-memory registry of truck types, loaded once
// from a reference source at startup.
type TruckCatalog struct {
	types []domain.TruckType
	byID  map[string]int
}

var _ ports.TruckCatalog = (*TruckCatalog)(nil)

// NewTruckCatalog validates and indexes the given truck types.
// Duplicate ids are rejected rather than silently shadowed.
func NewTruckCatalog(types []domain.TruckType) (*TruckCatalog, error) {
	sorted := slices.Clone(types)
	slices.SortFunc(sorted, func(a, b domain.TruckType) int { return strings.Compare(a.ID, b.ID) })

	byID := make(map[string]int, len(sorted))
	for i, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("new truck catalog: %w", err)
		}
		if _, ok := byID[t.ID]; ok {
			return nil, fmt.Errorf("new truck catalog: duplicate truck id %q", t.ID)
		}
		byID[t.ID] = i
	}

	return &TruckCatalog{types: sorted, byID: byID}, nil
}

func (c *TruckCatalog) ListTypes(filter ports.TruckFilter) []domain.TruckType {
	out := make([]domain.TruckType, 0, len(c.types))
	for _, t := range c.types {
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if t.MaxPayload < filter.MinPayload {
			continue
		}
		if t.DeckLength < filter.MinDeckLength {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *TruckCatalog) GetByID(id string) (domain.TruckType, error) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.TruckType{}, fmt.Errorf("get truck type %q: %w", id, domain.ErrNotFound)
	}
	return c.types[i], nil
}

// Len returns the number of truck types in the catalog.
func (c *TruckCatalog) Len() int { return len(c.types) }

// Candidates resolves the trucks a request may use. Explicit ids must all
// exist; an unknown id is an error wrapping domain.ErrNotFound, not a
// silently smaller candidate set. Repeated ids are kept once and the
// category, when set, narrows either form.
func Candidates(catalog ports.TruckCatalog, ids []string, category string) ([]domain.TruckType, error) {
	cat := domain.TruckCategory(strings.ToUpper(strings.TrimSpace(category)))

	if len(ids) == 0 {
		return catalog.ListTypes(ports.TruckFilter{Category: cat}), nil
	}

	out := make([]domain.TruckType, 0, len(ids))
	seen := map[string]struct{}{}
	for _, id := range ids {
		truck, err := catalog.GetByID(id)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[truck.ID]; ok {
			continue
		}
		seen[truck.ID] = struct{}{}
		if cat != "" && truck.Category != cat {
			continue
		}
		out = append(out, truck)
	}
	return out, nil
}
