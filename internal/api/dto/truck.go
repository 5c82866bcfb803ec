package dto

import "load-planner-service/internal/domain"

type ListTrucksResponse struct {
	Trucks []domain.TruckType `json:"trucks"`
}

type JurisdictionResponse struct {
	Code  string        `json:"code"`
	Name  string        `json:"name"`
	Legal domain.Limits `json:"legal"`
}

type ListJurisdictionsResponse struct {
	Jurisdictions []JurisdictionResponse `json:"jurisdictions"`
}
