package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"

	"github.com/zeebo/blake3"
)

// LoadReference reads truck types and state rules once and builds the
// immutable catalog and rule table the engine plans against.
func LoadReference(ctx context.Context, src ports.ReferenceSource) (*TruckCatalog, *PermitRuleTable, error) {
	trucks, err := src.ListTruckTypes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference: %w", err)
	}
	states, err := src.ListStateRules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference: %w", err)
	}

	catalog, err := NewTruckCatalog(trucks)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference: %w", err)
	}
	rules, err := NewPermitRuleTable(states)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference: %w", err)
	}
	return catalog, rules, nil
}

// ReferenceDigest fingerprints the loaded trucks and state rules. Results
// cached under one digest are never served for different reference data.
func ReferenceDigest(catalog *TruckCatalog, rules *PermitRuleTable) (string, error) {
	states := make([]domain.StateRules, 0, len(rules.Codes()))
	for _, code := range rules.Codes() {
		r, err := rules.Lookup(code)
		if err != nil {
			return "", fmt.Errorf("reference digest: %w", err)
		}
		states = append(states, r)
	}

	raw, err := json.Marshal(struct {
		Trucks []domain.TruckType
		States []domain.StateRules
	}{catalog.ListTypes(ports.TruckFilter{}), states})
	if err != nil {
		return "", fmt.Errorf("reference digest: %w", err)
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
