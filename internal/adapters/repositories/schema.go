package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"load-planner-service/internal/domain"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the target database.
// The schema itself is portable between SQLite and Postgres.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// ParseDialect maps a driver name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return SQLite, fmt.Errorf("unknown sql dialect %q", name)
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Initialize the reference data schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTruckTypesQuery := `
	CREATE TABLE IF NOT EXISTS truck_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		deck_length DOUBLE PRECISION NOT NULL,
		deck_width DOUBLE PRECISION NOT NULL,
		deck_height DOUBLE PRECISION NOT NULL,
		max_payload DOUBLE PRECISION NOT NULL,
		unloaded_length DOUBLE PRECISION NOT NULL,
		unloaded_width DOUBLE PRECISION NOT NULL,
		unloaded_height DOUBLE PRECISION NOT NULL,
		unloaded_weight DOUBLE PRECISION NOT NULL,
		axle_count INTEGER NOT NULL,
		axle_weight_limit DOUBLE PRECISION NOT NULL,
		base_cost_per_mile DOUBLE PRECISION NOT NULL
	);
	`

	createStateRulesQuery := `
	CREATE TABLE IF NOT EXISTS state_rules (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		legal_length DOUBLE PRECISION NOT NULL,
		legal_width DOUBLE PRECISION NOT NULL,
		legal_height DOUBLE PRECISION NOT NULL,
		legal_weight DOUBLE PRECISION NOT NULL
	);
	`

	createEscortBandsQuery := `
	CREATE TABLE IF NOT EXISTS escort_bands (
		state_code TEXT NOT NULL REFERENCES state_rules(code) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		dimension TEXT NOT NULL,
		over_amount DOUBLE PRECISION NOT NULL,
		escorts INTEGER NOT NULL,
		restrictions TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (state_code, position)
	);
	`

	createPermitFeesQuery := `
	CREATE TABLE IF NOT EXISTS permit_fees (
		state_code TEXT NOT NULL REFERENCES state_rules(code) ON DELETE CASCADE,
		permit_type TEXT NOT NULL,
		fee DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (state_code, permit_type)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_truck_types_category
	ON truck_types(category);
	`

	statements := []string{
		createTruckTypesQuery,
		createStateRulesQuery,
		createEscortBandsQuery,
		createPermitFeesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed upserts truck types and state rules. A state's bands and fees are
// replaced wholesale so a reseed never leaves stale bands behind.
func Seed(
	ctx context.Context,
	db *sql.DB,
	dialect Dialect,
	trucks []domain.TruckType,
	states []domain.StateRules,
) error {
	if db == nil {
		return errors.New("seed reference data: DB is nil")
	}

	for i, t := range trucks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("seed reference data: truck at index %d: %w", i+1, err)
		}
	}
	states = slices.Clone(states)
	for i := range states {
		states[i].Bands = slices.Clone(states[i].Bands)
		if err := states[i].Validate(); err != nil {
			return fmt.Errorf("seed reference data: state at index %d: %w", i+1, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed reference data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	truckStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO truck_types (
		id, name, category,
		deck_length, deck_width, deck_height, max_payload,
		unloaded_length, unloaded_width, unloaded_height, unloaded_weight,
		axle_count, axle_weight_limit, base_cost_per_mile
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		category = EXCLUDED.category,
		deck_length = EXCLUDED.deck_length,
		deck_width = EXCLUDED.deck_width,
		deck_height = EXCLUDED.deck_height,
		max_payload = EXCLUDED.max_payload,
		unloaded_length = EXCLUDED.unloaded_length,
		unloaded_width = EXCLUDED.unloaded_width,
		unloaded_height = EXCLUDED.unloaded_height,
		unloaded_weight = EXCLUDED.unloaded_weight,
		axle_count = EXCLUDED.axle_count,
		axle_weight_limit = EXCLUDED.axle_weight_limit,
		base_cost_per_mile = EXCLUDED.base_cost_per_mile;
	`))
	if err != nil {
		return fmt.Errorf("seed reference data: prepare truck insert: %w", err)
	}
	defer truckStmt.Close()

	for _, t := range trucks {
		_, err := truckStmt.ExecContext(ctx,
			t.ID, t.Name, string(t.Category),
			t.DeckLength, t.DeckWidth, t.DeckHeight, t.MaxPayload,
			t.Unloaded.Length, t.Unloaded.Width, t.Unloaded.Height, t.Unloaded.Weight,
			t.AxleCount, t.AxleWeightLimit, t.BaseCostPerMile,
		)
		if err != nil {
			return fmt.Errorf("seed reference data: insert truck id=%q: %w", t.ID, err)
		}
	}

	stateStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO state_rules (code, name, legal_length, legal_width, legal_height, legal_weight)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name,
		legal_length = EXCLUDED.legal_length,
		legal_width = EXCLUDED.legal_width,
		legal_height = EXCLUDED.legal_height,
		legal_weight = EXCLUDED.legal_weight;
	`))
	if err != nil {
		return fmt.Errorf("seed reference data: prepare state insert: %w", err)
	}
	defer stateStmt.Close()

	for _, s := range states {
		if _, err := stateStmt.ExecContext(ctx,
			s.Code, s.Name, s.Legal.Length, s.Legal.Width, s.Legal.Height, s.Legal.Weight,
		); err != nil {
			return fmt.Errorf("seed reference data: insert state code=%q: %w", s.Code, err)
		}

		if _, err := tx.ExecContext(ctx, dialect.rebind(`DELETE FROM escort_bands WHERE state_code = ?;`), s.Code); err != nil {
			return fmt.Errorf("seed reference data: clear bands code=%q: %w", s.Code, err)
		}
		if _, err := tx.ExecContext(ctx, dialect.rebind(`DELETE FROM permit_fees WHERE state_code = ?;`), s.Code); err != nil {
			return fmt.Errorf("seed reference data: clear fees code=%q: %w", s.Code, err)
		}

		for i, b := range s.Bands {
			if _, err := tx.ExecContext(ctx, dialect.rebind(`
			INSERT INTO escort_bands (state_code, position, dimension, over_amount, escorts, restrictions)
			VALUES (?, ?, ?, ?, ?, ?);
			`), s.Code, i, string(b.Dimension), b.Over, b.Escorts, joinRestrictions(b.Restrictions)); err != nil {
				return fmt.Errorf("seed reference data: insert band code=%q position=%d: %w", s.Code, i, err)
			}
		}

		permitTypes := make([]string, 0, len(s.Fees))
		for p := range s.Fees {
			permitTypes = append(permitTypes, string(p))
		}
		sort.Strings(permitTypes)
		for _, p := range permitTypes {
			if _, err := tx.ExecContext(ctx, dialect.rebind(`
			INSERT INTO permit_fees (state_code, permit_type, fee)
			VALUES (?, ?, ?);
			`), s.Code, p, s.Fees[domain.PermitType(p)]); err != nil {
				return fmt.Errorf("seed reference data: insert fee code=%q type=%s: %w", s.Code, p, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference data: commit tx: %w", err)
	}

	return nil
}

func joinRestrictions(rs []domain.Restriction) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func splitRestrictions(s string) []domain.Restriction {
	out := []domain.Restriction{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.Restriction(part))
		}
	}
	return out
}
