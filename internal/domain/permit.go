package domain

import (
	"fmt"
	"slices"
	"sort"
)

type PermitType string

const (
	PermitOversizeLength PermitType = "OVERSIZE_LENGTH"
	PermitOversizeWidth  PermitType = "OVERSIZE_WIDTH"
	PermitOversizeHeight PermitType = "OVERSIZE_HEIGHT"
	PermitOverweight     PermitType = "OVERWEIGHT"
)

// PermitFor maps an envelope dimension to the permit its excess requires.
func PermitFor(d Dimension) PermitType {
	switch d {
	case DimensionLength:
		return PermitOversizeLength
	case DimensionWidth:
		return PermitOversizeWidth
	case DimensionHeight:
		return PermitOversizeHeight
	default:
		return PermitOverweight
	}
}

var permitOrder = map[PermitType]int{
	PermitOversizeLength: 0,
	PermitOversizeWidth:  1,
	PermitOversizeHeight: 2,
	PermitOverweight:     3,
}

type Restriction string

const (
	RestrictionDaylightOnly Restriction = "DAYLIGHT_ONLY"
	RestrictionNoWeekend    Restriction = "NO_WEEKEND"
	RestrictionNoHoliday    Restriction = "NO_HOLIDAY"
)

func (r Restriction) Valid() bool {
	switch r {
	case RestrictionDaylightOnly, RestrictionNoWeekend, RestrictionNoHoliday:
		return true
	}
	return false
}

// MaxEscorts is the most pilot vehicles any rule can demand: one front, one rear.
const MaxEscorts = 2

// An escort-trigger band: once the excess over the legal limit for Dimension
// reaches Over (inches, or pounds for weight) the band applies.
type EscortBand struct {
	Dimension    Dimension     `json:"dimension" yaml:"dimension"`
	Over         float64       `json:"over" yaml:"over"`
	Escorts      int           `json:"escorts" yaml:"escorts"`
	Restrictions []Restriction `json:"restrictions" yaml:"restrictions"`
}

// Legal limits and permit rules of one jurisdiction.
type StateRules struct {
	Code  string                 `json:"code" yaml:"code"`
	Name  string                 `json:"name" yaml:"name"`
	Legal Limits                 `json:"legal" yaml:"legal"`
	Bands []EscortBand           `json:"bands" yaml:"bands"`
	Fees  map[PermitType]float64 `json:"fees" yaml:"fees"`
}

// Validate checks a rule record and puts its bands into ascending order.
func (s *StateRules) Validate() error {
	s.Code = NormalizeStateCode(s.Code)
	if s.Code == "" {
		return fmt.Errorf("state rules: code must not be empty")
	}
	if !Positive(s.Legal.Length) || !Positive(s.Legal.Width) || !Positive(s.Legal.Height) || !Positive(s.Legal.Weight) {
		return fmt.Errorf("state rules %s: legal limits must be positive", s.Code)
	}
	for i, b := range s.Bands {
		if !b.Dimension.Valid() {
			return fmt.Errorf("state rules %s: band %d: unknown dimension %q", s.Code, i+1, b.Dimension)
		}
		if !NonNegative(b.Over) {
			return fmt.Errorf("state rules %s: band %d: threshold must not be negative", s.Code, i+1)
		}
		if b.Escorts < 0 || b.Escorts > MaxEscorts {
			return fmt.Errorf("state rules %s: band %d: escorts must be between 0 and %d", s.Code, i+1, MaxEscorts)
		}
		for _, r := range b.Restrictions {
			if !r.Valid() {
				return fmt.Errorf("state rules %s: band %d: unknown restriction %q", s.Code, i+1, r)
			}
		}
	}
	for t, fee := range s.Fees {
		if _, ok := permitOrder[t]; !ok {
			return fmt.Errorf("state rules %s: fee for unknown permit type %q", s.Code, t)
		}
		if !NonNegative(fee) {
			return fmt.Errorf("state rules %s: fee for %s must not be negative", s.Code, t)
		}
	}
	sort.SliceStable(s.Bands, func(i, j int) bool {
		if s.Bands[i].Dimension != s.Bands[j].Dimension {
			return s.Bands[i].Dimension < s.Bands[j].Dimension
		}
		return s.Bands[i].Over < s.Bands[j].Over
	})
	return nil
}

// Per-state permit and escort requirement for one load on one route.
type PermitRequirement struct {
	StateCode    string        `json:"state_code"`
	Permits      []PermitType  `json:"permits"`
	Escorts      int           `json:"escorts"`
	Restrictions []Restriction `json:"restrictions"`
	Miles        float64       `json:"miles"`
	EstimatedFee float64       `json:"estimated_fee"`
}

// Has reports whether the requirement includes permit type p.
func (p PermitRequirement) Has(t PermitType) bool {
	return slices.Contains(p.Permits, t)
}

// SortPermits orders permit types length, width, height, weight.
func SortPermits(ps []PermitType) {
	slices.SortFunc(ps, func(a, b PermitType) int { return permitOrder[a] - permitOrder[b] })
}

// UnionRestrictions merges restriction sets into a sorted, duplicate-free slice.
func UnionRestrictions(sets ...[]Restriction) []Restriction {
	out := []Restriction{}
	for _, set := range sets {
		for _, r := range set {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	slices.Sort(out)
	return out
}

// UnionPermits merges permit type sets in canonical order.
func UnionPermits(sets ...[]PermitType) []PermitType {
	out := []PermitType{}
	for _, set := range sets {
		for _, p := range set {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	SortPermits(out)
	return out
}
