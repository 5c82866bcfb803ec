package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/platform/obs"
	"load-planner-service/internal/ports"

	"go.uber.org/zap"
)

// SQL-backed implementation of the ReferenceSource port. The queries take no
// parameters, so they serve SQLite and Postgres alike.
type ReferenceRepository struct {
	DB  *sql.DB
	log *zap.Logger
}

var _ ports.ReferenceSource = (*ReferenceRepository)(nil)

func NewReferenceRepository(db *sql.DB, log *zap.Logger) *ReferenceRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReferenceRepository{DB: db, log: log}
}

// Return all truck types ordered by id.
func (r *ReferenceRepository) ListTruckTypes(ctx context.Context) (_ []domain.TruckType, err error) {
	defer obs.Time(ctx, r.log, "reference.ListTruckTypes")(&err)

	if r.DB == nil {
		return nil, errors.New("reference repository: DB is nil")
	}

	query := `
	SELECT
		id, name, category,
		deck_length, deck_width, deck_height, max_payload,
		unloaded_length, unloaded_width, unloaded_height, unloaded_weight,
		axle_count, axle_weight_limit, base_cost_per_mile
	FROM truck_types
	ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list truck types: query truck_types table: %w", err)
	}
	defer rows.Close()

	trucks := make([]domain.TruckType, 0, 16)
	for rows.Next() {
		var t domain.TruckType
		var category string
		err := rows.Scan(
			&t.ID, &t.Name, &category,
			&t.DeckLength, &t.DeckWidth, &t.DeckHeight, &t.MaxPayload,
			&t.Unloaded.Length, &t.Unloaded.Width, &t.Unloaded.Height, &t.Unloaded.Weight,
			&t.AxleCount, &t.AxleWeightLimit, &t.BaseCostPerMile,
		)
		if err != nil {
			return nil, fmt.Errorf("list truck types: scan row: %w", err)
		}
		t.Category = domain.TruckCategory(category)
		trucks = append(trucks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list truck types: row iteration: %w", err)
	}

	return trucks, nil
}

// Return every state's limits with its escort bands and fees, ordered by code.
// The three tables are read one after another; rows are never held open
// across queries.
func (r *ReferenceRepository) ListStateRules(ctx context.Context) (_ []domain.StateRules, err error) {
	defer obs.Time(ctx, r.log, "reference.ListStateRules")(&err)

	if r.DB == nil {
		return nil, errors.New("reference repository: DB is nil")
	}

	states, index, err := r.queryStates(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.queryBands(ctx, states, index); err != nil {
		return nil, err
	}
	if err := r.queryFees(ctx, states, index); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *ReferenceRepository) queryStates(ctx context.Context) ([]domain.StateRules, map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT code, name, legal_length, legal_width, legal_height, legal_weight
	FROM state_rules
	ORDER BY code;
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("list state rules: query state_rules table: %w", err)
	}
	defer rows.Close()

	states := make([]domain.StateRules, 0, 64)
	index := map[string]int{}
	for rows.Next() {
		s := domain.StateRules{
			Bands: []domain.EscortBand{},
			Fees:  map[domain.PermitType]float64{},
		}
		if err := rows.Scan(&s.Code, &s.Name, &s.Legal.Length, &s.Legal.Width, &s.Legal.Height, &s.Legal.Weight); err != nil {
			return nil, nil, fmt.Errorf("list state rules: scan row: %w", err)
		}
		index[s.Code] = len(states)
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("list state rules: row iteration: %w", err)
	}
	return states, index, nil
}

func (r *ReferenceRepository) queryBands(ctx context.Context, states []domain.StateRules, index map[string]int) error {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT state_code, dimension, over_amount, escorts, restrictions
	FROM escort_bands
	ORDER BY state_code, position;
	`)
	if err != nil {
		return fmt.Errorf("list state rules: query escort_bands table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, dimension, restrictions string
		var b domain.EscortBand
		if err := rows.Scan(&code, &dimension, &b.Over, &b.Escorts, &restrictions); err != nil {
			return fmt.Errorf("list state rules: scan band: %w", err)
		}
		i, ok := index[code]
		if !ok {
			continue
		}
		b.Dimension = domain.Dimension(dimension)
		b.Restrictions = splitRestrictions(restrictions)
		states[i].Bands = append(states[i].Bands, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list state rules: band iteration: %w", err)
	}
	return nil
}

func (r *ReferenceRepository) queryFees(ctx context.Context, states []domain.StateRules, index map[string]int) error {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT state_code, permit_type, fee
	FROM permit_fees
	ORDER BY state_code, permit_type;
	`)
	if err != nil {
		return fmt.Errorf("list state rules: query permit_fees table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, permit string
		var fee float64
		if err := rows.Scan(&code, &permit, &fee); err != nil {
			return fmt.Errorf("list state rules: scan fee: %w", err)
		}
		if i, ok := index[code]; ok {
			states[i].Fees[domain.PermitType(permit)] = fee
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list state rules: fee iteration: %w", err)
	}
	return nil
}
