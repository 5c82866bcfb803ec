package dto

import "load-planner-service/internal/domain"

type EnvelopeRequest struct {
	Length float64 `json:"length" validate:"gt=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

type PermitRequest struct {
	Envelope EnvelopeRequest       `json:"envelope"`
	Route    []StateSegmentRequest `json:"route" validate:"required,min=1,dive"`
}

func (e EnvelopeRequest) ToDomain() domain.Envelope {
	return domain.Envelope{Length: e.Length, Width: e.Width, Height: e.Height, Weight: e.Weight}
}

type PermitResponse struct {
	Permits  []domain.PermitRequirement `json:"permits"`
	TotalFee float64                    `json:"total_fee"`
}
