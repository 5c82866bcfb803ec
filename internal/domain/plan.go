package domain

// How TruckLoad.Cost and LoadPlan.TotalCost were derived.
type CostBasis string

const (
	// Base cost per mile multiplied by the total route mileage.
	CostBasisRoute CostBasis = "ROUTE_TOTAL"
	// No route supplied: costs are the per-mile base rates.
	CostBasisPerMile CostBasis = "PER_MILE"
)

// One truck and the cargo units it carries.
// Fit is always feasible. Envelope is the loaded overall vehicle envelope.
type TruckLoad struct {
	Truck      TruckType           `json:"truck"`
	Units      []CargoUnit         `json:"units"`
	Fit        FitResult           `json:"fit"`
	Envelope   Envelope            `json:"envelope"`
	Permits    []PermitRequirement `json:"permits"`
	Cost       float64             `json:"cost"`
	PermitFees float64             `json:"permit_fees"`
}

// A unit no available truck can carry, even on its own.
type UnplacedUnit struct {
	UnitID string    `json:"unit_id"`
	ItemID string    `json:"item_id"`
	Reason FitReason `json:"reason"`
}

// Top-level planning output. Every unit of the manifest appears in exactly
// one load or in Unplaceable. Permits is the per-state union over all loads.
type LoadPlan struct {
	Loads          []TruckLoad         `json:"loads"`
	TruckCount     int                 `json:"truck_count"`
	TotalCost      float64             `json:"total_cost"`
	TotalPermitFee float64             `json:"total_permit_fee"`
	CostBasis      CostBasis           `json:"cost_basis"`
	Permits        []PermitRequirement `json:"permits"`
	Unplaceable    []UnplacedUnit      `json:"unplaceable"`
}

// Complete reports whether every unit was placed.
func (p *LoadPlan) Complete() bool { return len(p.Unplaceable) == 0 }
