package dto

import "load-planner-service/internal/domain"

type PlanRequest struct {
	Items []CargoItemRequest    `json:"items" validate:"required,min=1,dive"`
	Route []StateSegmentRequest `json:"route" validate:"omitempty,dive"`
	CandidateFilter
}

type LoadResponse struct {
	TruckID     string                     `json:"truck_id"`
	TruckName   string                     `json:"truck_name"`
	Category    domain.TruckCategory       `json:"category"`
	UnitIDs     []string                   `json:"unit_ids"`
	Utilization UtilizationResponse        `json:"utilization"`
	Envelope    domain.Envelope            `json:"envelope"`
	Placements  []domain.Placement         `json:"placements"`
	Flagged     []domain.FlaggedUnit       `json:"flagged"`
	Permits     []domain.PermitRequirement `json:"permits"`
	Cost        float64                    `json:"cost"`
	PermitFees  float64                    `json:"permit_fees"`
}

type PlanResponse struct {
	TruckCount     int                        `json:"truck_count"`
	TotalCost      float64                    `json:"total_cost"`
	TotalPermitFee float64                    `json:"total_permit_fee"`
	CostBasis      domain.CostBasis           `json:"cost_basis"`
	Complete       bool                       `json:"complete"`
	Loads          []LoadResponse             `json:"loads"`
	Permits        []domain.PermitRequirement `json:"permits"`
	Unplaceable    []domain.UnplacedUnit      `json:"unplaceable"`
}

func NewPlanResponse(plan *domain.LoadPlan) PlanResponse {
	res := PlanResponse{
		TruckCount:     plan.TruckCount,
		TotalCost:      plan.TotalCost,
		TotalPermitFee: plan.TotalPermitFee,
		CostBasis:      plan.CostBasis,
		Complete:       plan.Complete(),
		Loads:          make([]LoadResponse, 0, len(plan.Loads)),
		Permits:        plan.Permits,
		Unplaceable:    plan.Unplaceable,
	}

	for _, l := range plan.Loads {
		ids := make([]string, 0, len(l.Units))
		for _, u := range l.Units {
			ids = append(ids, u.ID)
		}
		res.Loads = append(res.Loads, LoadResponse{
			TruckID:     l.Truck.ID,
			TruckName:   l.Truck.Name,
			Category:    l.Truck.Category,
			UnitIDs:     ids,
			Utilization: Utilization(l.Fit),
			Envelope:    l.Envelope,
			Placements:  l.Fit.Placements,
			Flagged:     l.Fit.Flagged,
			Permits:     l.Permits,
			Cost:        l.Cost,
			PermitFees:  l.PermitFees,
		})
	}
	return res
}
