package main

import (
	"bytes"
	"context"
	"encoding/json"
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReference = `
trucks:
  - id: fb
    name: Flatbed
    category: FLATBED
    deck_length: 576
    deck_width: 102
    deck_height: 102
    max_payload: 48000
    unloaded: { length: 840, width: 102, height: 60, weight: 32000 }
    axle_count: 5
    axle_weight_limit: 20000
    base_cost_per_mile: 2.5
states:
  - code: TX
    name: Texas
    legal: { length: 1020, width: 102, height: 168, weight: 80000 }
    fees: { OVERSIZE_WIDTH: 60 }
`

const testManifest = `{
  // two crates, trailing commas allowed
  "items": [
    { "id": "crate", "length": 48, "width": 40, "height": 40, "weight": 500, "quantity": 2, },
  ],
  "route": [ { "state_code": "tx", "miles": 100 }, ],
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunPlansManifest(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.yaml", testReference)
	manifest := writeFile(t, dir, "job.jsonc", testManifest)

	out, err := runCLI(t, "--reference", ref, "--manifest", manifest)
	require.NoError(t, err)

	var plan dto.PlanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.True(t, plan.Complete)
	assert.Equal(t, 1, plan.TruckCount)
	require.Len(t, plan.Loads, 1)
	assert.Equal(t, "fb", plan.Loads[0].TruckID)
	assert.ElementsMatch(t, []string{"crate#1", "crate#2"}, plan.Loads[0].UnitIDs)
	assert.Equal(t, domain.CostBasisRoute, plan.CostBasis)
	assert.InDelta(t, 250, plan.TotalCost, 1e-9)
	assert.Zero(t, plan.TotalPermitFee)
	assert.Empty(t, plan.Permits)
}

func TestRunRouteFileOverridesManifest(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.yaml", testReference)
	manifest := writeFile(t, dir, "job.jsonc", testManifest)
	route := writeFile(t, dir, "route.jsonc", `[ { "state_code": "ZZ", "miles": 5 }, // nowhere
]`)

	_, err := runCLI(t, "--reference", ref, "--manifest", manifest, "--route", route)
	assert.ErrorIs(t, err, domain.ErrUnknownJurisdiction)
}

func TestRunSelectOnly(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.yaml", testReference)
	manifest := writeFile(t, dir, "job.jsonc", testManifest)

	out, err := runCLI(t, "--reference", ref, "--manifest", manifest, "--select", "--pretty")
	require.NoError(t, err)

	var res dto.SelectionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Trucks, 1)
	assert.Equal(t, 1, res.Trucks[0].Rank)
	assert.Equal(t, "fb", res.Trucks[0].TruckID)
	assert.Contains(t, out, "\n  \"trucks\"")
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "reference.yaml", testReference)
	manifest := writeFile(t, dir, "job.jsonc", testManifest)

	_, err := runCLI(t, "--reference", ref)
	assert.ErrorContains(t, err, "--manifest is required")

	_, err = runCLI(t, "--reference", ref, "--manifest", manifest, "extra")
	assert.ErrorContains(t, err, "unexpected argument")

	_, err = runCLI(t, "--reference", ref, "--manifest", manifest, "--trucks", "hotshot")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	unknown := writeFile(t, dir, "unknown.jsonc", `{ "items": [], "priority": "high" }`)
	_, err = runCLI(t, "--reference", ref, "--manifest", unknown)
	assert.ErrorContains(t, err, "parse")

	_, err = runCLI(t, "--reference", filepath.Join(dir, "missing.yaml"), "--manifest", manifest)
	assert.Error(t, err)

	_, err = runCLI(t, "--help")
	assert.NoError(t, err)
}
