// Command loadplan plans a cargo manifest offline against a YAML reference
// file and prints the plan as JSON.
//
// Manifest and route files are JSONC: comments and trailing commas are allowed.
//
//	loadplan --manifest job.jsonc --route route.jsonc --reference data/reference.yaml
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"load-planner-service/internal/adapters/reference"
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/platform/obs"
	"load-planner-service/internal/services"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Manifest is the input document: the items to move, plus an optional route
// and candidate restriction.
type Manifest struct {
	Items    []dto.CargoItemRequest    `json:"items"`
	Route    []dto.StateSegmentRequest `json:"route"`
	TruckIDs []string                  `json:"truck_ids"`
	Category string                    `json:"category"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		manifestPath  string
		routePath     string
		referencePath string
		truckIDs      []string
		category      string
		logLevel      string
		selectOnly    bool
		pretty        bool
		workers       int
	)

	flagSet := pflag.NewFlagSet("loadplan", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&manifestPath, "manifest", "m", "", "JSONC manifest file (required)")
	flagSet.StringVarP(&routePath, "route", "r", "", "JSONC route file: an array of {state_code, miles}; overrides the manifest route")
	flagSet.StringVar(&referencePath, "reference", "data/reference.yaml", "YAML reference data file")
	flagSet.StringSliceVar(&truckIDs, "trucks", nil, "restrict candidates to these truck ids")
	flagSet.StringVar(&category, "category", "", "restrict candidates to one truck category")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	flagSet.BoolVar(&selectOnly, "select", false, "rank trucks for the whole manifest instead of planning loads")
	flagSet.BoolVar(&pretty, "pretty", false, "indent the JSON output")
	flagSet.IntVar(&workers, "workers", 0, "concurrent fit analyses (0 = one per candidate)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if manifestPath == "" {
		return errors.New("--manifest is required")
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	log, err := obs.NewLogger(logLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var manifest Manifest
	if err := readJSONC(manifestPath, &manifest); err != nil {
		return err
	}
	if routePath != "" {
		manifest.Route = nil
		if err := readJSONC(routePath, &manifest.Route); err != nil {
			return err
		}
	}
	if len(truckIDs) > 0 {
		manifest.TruckIDs = truckIDs
	}
	if category != "" {
		manifest.Category = category
	}

	catalog, rules, err := services.LoadReference(ctx, reference.NewYAMLSource(referencePath))
	if err != nil {
		return err
	}
	trucks, err := services.Candidates(catalog, manifest.TruckIDs, manifest.Category)
	if err != nil {
		return err
	}
	log.Debug("reference loaded",
		zap.String("path", referencePath),
		zap.Int("candidates", len(trucks)),
		zap.Int("states", len(rules.Codes())),
	)

	weights := services.DefaultScoringWeights()
	selector := services.NewTruckSelector(services.NewFitAnalyzer(), rules, workers)
	items := dto.CargoItems(manifest.Items)

	var out any
	if selectOnly {
		ranked, err := selector.Select(ctx, items, trucks, weights)
		if err != nil {
			return err
		}
		out = dto.NewSelectionResponse(ranked)
	} else {
		planner := services.NewLoadPlanner(selector, services.NewPermitCalculator(rules), weights, log)
		plan, err := planner.Plan(ctx, items, trucks, dto.Route(manifest.Route))
		if err != nil {
			return err
		}
		out = dto.NewPlanResponse(plan)
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// readJSONC strips comments and trailing commas, then decodes strictly.
func readJSONC(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
