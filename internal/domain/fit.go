package domain

// Why a cargo set cannot ride on a truck.
type FitReason string

const (
	ReasonNone              FitReason = ""
	ReasonExceedsLength     FitReason = "EXCEEDS_LENGTH"
	ReasonExceedsWidth      FitReason = "EXCEEDS_WIDTH"
	ReasonExceedsHeight     FitReason = "EXCEEDS_HEIGHT"
	ReasonExceedsWeight     FitReason = "EXCEEDS_WEIGHT"
	ReasonExceedsAxleWeight FitReason = "EXCEEDS_AXLE_WEIGHT"

	// Reported for unplaceable units when no candidate trucks were offered.
	ReasonNoEquipment FitReason = "NO_EQUIPMENT"
)

type FitFlag string

const (
	// The unit only fits the deck in a non-native orientation.
	FlagRotated FitFlag = "ROTATED"
	// Irregular geometry approximated by its bounding box, unrotated and unstacked.
	FlagIrregularBoundingBox FitFlag = "IRREGULAR_BOUNDING_BOX"
)

// Dimensions of a unit as placed, along deck length, width and height.
type Orientation struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (o Orientation) Footprint() float64 { return o.Length * o.Width }

// Where a unit sits on the deck. X runs front-to-back along the deck length,
// Y left-to-right across the width and Z up from the deck surface.
type Placement struct {
	UnitID      string      `json:"unit_id"`
	ItemID      string      `json:"item_id"`
	Orientation Orientation `json:"orientation"`
	Rotated     bool        `json:"rotated"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Z           float64     `json:"z"`
	Shelf       int         `json:"shelf"`
	StackLevel  int         `json:"stack_level"`
}

type FlaggedUnit struct {
	UnitID string  `json:"unit_id"`
	Flag   FitFlag `json:"flag"`
}

// Outcome of fitting a cargo set onto one truck type.
// Utilizations are percentages. Envelope is the cargo envelope on the deck,
// not including the rig itself.
type FitResult struct {
	TruckID           string        `json:"truck_id"`
	Feasible          bool          `json:"feasible"`
	Reason            FitReason     `json:"reason,omitempty"`
	BlockingUnit      string        `json:"blocking_unit,omitempty"`
	Placements        []Placement   `json:"placements"`
	LengthUtilization float64       `json:"length_utilization"`
	WidthUtilization  float64       `json:"width_utilization"`
	HeightUtilization float64       `json:"height_utilization"`
	VolumeUtilization float64       `json:"volume_utilization"`
	WeightUtilization float64       `json:"weight_utilization"`
	Envelope          Envelope      `json:"envelope"`
	Flagged           []FlaggedUnit `json:"flagged"`
}

// Infeasible builds a result rejecting the whole set for one reason.
func Infeasible(truckID string, reason FitReason, unitID string) FitResult {
	return FitResult{
		TruckID:      truckID,
		Feasible:     false,
		Reason:       reason,
		BlockingUnit: unitID,
		Placements:   []Placement{},
		Flagged:      []FlaggedUnit{},
	}
}
