package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Geometry string

const (
	GeometryBox       Geometry = "BOX"
	GeometryCylinder  Geometry = "CYLINDER"
	GeometryIrregular Geometry = "IRREGULAR"
)

// Valid reports whether g is one of the known geometry tags.
func (g Geometry) Valid() bool {
	switch g {
	case GeometryBox, GeometryCylinder, GeometryIrregular:
		return true
	}
	return false
}

// Represents one physical piece to transport.
// Dimensions are inches and weight is pounds. Quantity > 1 means that many
// identical pieces; they are expanded into CargoUnits before fitting.
// For cylinders Length is the rolling axis and Width/Height the bounding diameter.
type CargoItem struct {
	ID        string   `json:"id" yaml:"id"`
	Length    float64  `json:"length" yaml:"length"`
	Width     float64  `json:"width" yaml:"width"`
	Height    float64  `json:"height" yaml:"height"`
	Weight    float64  `json:"weight" yaml:"weight"`
	Quantity  int      `json:"quantity" yaml:"quantity"`
	Geometry  Geometry `json:"geometry" yaml:"geometry"`
	Stackable bool     `json:"stackable" yaml:"stackable"`
	Fragile   bool     `json:"fragile" yaml:"fragile"`
}

// Validate checks the item invariants. Items produced by the external
// extraction service go through here like any other input.
func (c CargoItem) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidCargo)
	}
	if !Positive(c.Length) || !Positive(c.Width) || !Positive(c.Height) {
		return fmt.Errorf("%w: item %q: dimensions must be positive (got %gx%gx%g)",
			ErrInvalidCargo, c.ID, c.Length, c.Width, c.Height)
	}
	if !Positive(c.Weight) {
		return fmt.Errorf("%w: item %q: weight must be positive (got %g)", ErrInvalidCargo, c.ID, c.Weight)
	}
	if c.Quantity < 1 || c.Quantity > MaxManifestUnits {
		return fmt.Errorf("%w: item %q: quantity must be between 1 and %d (got %d)",
			ErrInvalidCargo, c.ID, MaxManifestUnits, c.Quantity)
	}
	if !c.Geometry.Valid() {
		return fmt.Errorf("%w: item %q: unknown geometry %q", ErrInvalidCargo, c.ID, c.Geometry)
	}
	return nil
}

func (c CargoItem) Volume() float64 { return c.Length * c.Width * c.Height }

// A single placeable piece: one of Quantity identical copies of an item.
type CargoUnit struct {
	ID     string    `json:"id"`
	ItemID string    `json:"item_id"`
	Item   CargoItem `json:"-"`
}

func (u CargoUnit) Volume() float64 { return u.Item.Volume() }
func (u CargoUnit) Weight() float64 { return u.Item.Weight }

// MaxManifestUnits caps the number of units one manifest may expand into.
const MaxManifestUnits = 10000

// ExpandManifest validates every item and expands quantities into units with
// ids of the form "<item id>#<n>". Item ids must be unique within a manifest.
func ExpandManifest(items []CargoItem) ([]CargoUnit, error) {
	seen := make(map[string]struct{}, len(items))
	total := 0
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("expand manifest: %w", err)
		}
		if _, ok := seen[item.ID]; ok {
			return nil, fmt.Errorf("expand manifest: %w: duplicate item id %q", ErrInvalidCargo, item.ID)
		}
		seen[item.ID] = struct{}{}
		total += item.Quantity
		if total > MaxManifestUnits {
			return nil, fmt.Errorf("expand manifest: %w: more than %d units", ErrInvalidCargo, MaxManifestUnits)
		}
	}

	units := make([]CargoUnit, 0, total)
	for _, item := range items {
		for n := 1; n <= item.Quantity; n++ {
			units = append(units, CargoUnit{ID: item.ID + "#" + strconv.Itoa(n), ItemID: item.ID, Item: item})
		}
	}
	return units, nil
}
