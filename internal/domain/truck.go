package domain

import (
	"fmt"
	"math"
	"strings"
)

type TruckCategory string

const (
	CategoryFlatbed          TruckCategory = "FLATBED"
	CategoryStepDeck         TruckCategory = "STEP_DECK"
	CategoryLowboy           TruckCategory = "LOWBOY"
	CategoryDoubleDrop       TruckCategory = "DOUBLE_DROP"
	CategoryRGN              TruckCategory = "RGN"
	CategoryContainerChassis TruckCategory = "CONTAINER_CHASSIS"
	CategoryDryVan           TruckCategory = "DRY_VAN"
	CategoryReefer           TruckCategory = "REEFER"
	CategoryConestoga        TruckCategory = "CONESTOGA"
)

// Truck/trailer configuration and its physical capacity envelope.
// Deck dimensions bound the cargo. Unloaded describes the empty rig:
// overall length and width, deck height above ground, and tare weight.
// TruckTypes are read-only reference data owned by the catalog.
type TruckType struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Category        TruckCategory `json:"category" yaml:"category"`
	DeckLength      float64       `json:"deck_length" yaml:"deck_length"`
	DeckWidth       float64       `json:"deck_width" yaml:"deck_width"`
	DeckHeight      float64       `json:"deck_height" yaml:"deck_height"`
	MaxPayload      float64       `json:"max_payload" yaml:"max_payload"`
	Unloaded        Envelope      `json:"unloaded" yaml:"unloaded"`
	AxleCount       int           `json:"axle_count" yaml:"axle_count"`
	AxleWeightLimit float64       `json:"axle_weight_limit" yaml:"axle_weight_limit"`
	BaseCostPerMile float64       `json:"base_cost_per_mile" yaml:"base_cost_per_mile"`
}

// Validate rejects reference data the fit analyzer cannot reason about.
func (t TruckType) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("truck type: id must not be empty")
	}
	if !Positive(t.DeckLength) || !Positive(t.DeckWidth) || !Positive(t.DeckHeight) {
		return fmt.Errorf("truck type %q: deck dimensions must be positive", t.ID)
	}
	if !Positive(t.MaxPayload) {
		return fmt.Errorf("truck type %q: max payload must be positive", t.ID)
	}
	if t.AxleCount < 1 || !Positive(t.AxleWeightLimit) {
		return fmt.Errorf("truck type %q: axle count and axle weight limit must be positive", t.ID)
	}
	u := t.Unloaded
	if !NonNegative(u.Length) || !NonNegative(u.Width) || !NonNegative(u.Height) || !NonNegative(u.Weight) {
		return fmt.Errorf("truck type %q: unloaded envelope must not be negative", t.ID)
	}
	// The rig's own length and width bound the loaded vehicle, so only the
	// load height and weight vary with the cargo.
	if u.Length < t.DeckLength || u.Width < t.DeckWidth {
		return fmt.Errorf("truck type %q: unloaded length and width must cover the deck", t.ID)
	}
	if !NonNegative(t.BaseCostPerMile) {
		return fmt.Errorf("truck type %q: base cost per mile must not be negative", t.ID)
	}
	return nil
}

func (t TruckType) DeckVolume() float64 { return t.DeckLength * t.DeckWidth * t.DeckHeight }

// LoadedEnvelope combines a cargo envelope with the empty rig into the overall
// vehicle envelope that permit rules are evaluated against.
func (t TruckType) LoadedEnvelope(cargo Envelope) Envelope {
	return Envelope{
		Length: math.Max(t.Unloaded.Length, cargo.Length),
		Width:  math.Max(t.Unloaded.Width, cargo.Width),
		Height: t.Unloaded.Height + cargo.Height,
		Weight: t.Unloaded.Weight + cargo.Weight,
	}
}
