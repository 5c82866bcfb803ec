package api

import (
	"bytes"
	"context"
	"encoding/json"
	"load-planner-service/internal/adapters/cache"
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/ports"
	"load-planner-service/internal/services"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testTrucks() []domain.TruckType {
	return []domain.TruckType{
		{
			ID: "fb", Name: "Flatbed", Category: domain.CategoryFlatbed,
			DeckLength: 480, DeckWidth: 96, DeckHeight: 108, MaxPayload: 48000,
			Unloaded:  domain.Envelope{Length: 840, Width: 102, Height: 60, Weight: 32000},
			AxleCount: 5, AxleWeightLimit: 20000, BaseCostPerMile: 3,
		},
		{
			ID: "sd", Name: "Step Deck", Category: domain.CategoryStepDeck,
			DeckLength: 576, DeckWidth: 102, DeckHeight: 120, MaxPayload: 48000,
			Unloaded:  domain.Envelope{Length: 840, Width: 102, Height: 42, Weight: 33000},
			AxleCount: 5, AxleWeightLimit: 20000, BaseCostPerMile: 3.5,
		},
	}
}

func testStates() []domain.StateRules {
	return []domain.StateRules{
		{Code: "TX", Name: "Texas", Legal: domain.Limits{Length: 1020, Width: 102, Height: 168, Weight: 80000}},
		{
			Code: "OK", Name: "Oklahoma",
			Legal: domain.Limits{Length: 960, Width: 96, Height: 162, Weight: 80000},
			Fees:  map[domain.PermitType]float64{domain.PermitOversizeWidth: 40},
		},
	}
}

func newTestServer(t *testing.T, planCache ports.PlanCache) *httptest.Server {
	t.Helper()
	return newServerWith(t, planCache, services.DefaultScoringWeights(), testTrucks())
}

func newServerWith(t *testing.T, planCache ports.PlanCache, weights services.ScoringWeights, trucks []domain.TruckType) *httptest.Server {
	t.Helper()

	catalog, err := services.NewTruckCatalog(trucks)
	require.NoError(t, err)
	rules, err := services.NewPermitRuleTable(testStates())
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	selector := services.NewTruckSelector(services.NewFitAnalyzer(), rules, 2)
	calculator := services.NewPermitCalculator(rules)

	srv := httptest.NewServer(NewRouter(Deps{
		Catalog:    catalog,
		Rules:      rules,
		Selector:   selector,
		Calculator: calculator,
		Planner:    services.NewLoadPlanner(selector, calculator, weights, log),
		Weights:    weights,
		Cache:      planCache,
		CacheTTL:   time.Minute,
		Metrics:    metrics.New("loadplan"),
		Log:        log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

func crates(qty int) []dto.CargoItemRequest {
	return []dto.CargoItemRequest{{ID: "crate", Length: 100, Width: 48, Height: 48, Weight: 10000, Quantity: qty}}
}

func TestHealthAssignsRequestID(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"ok","truck_types":2,"jurisdictions":2}`, string(body))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res2.Body.Close()
	assert.Equal(t, "abc-123", res2.Header.Get("X-Request-ID"))

	res, _ = do(t, http.MethodPost, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, http.MethodGet, res.Header.Get("Allow"))
}

func TestTruckEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := do(t, http.MethodGet, srv.URL+"/trucks?category=step_deck", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list dto.ListTrucksResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Trucks, 1)
	assert.Equal(t, "sd", list.Trucks[0].ID)

	res, body = do(t, http.MethodGet, srv.URL+"/trucks?min_deck_length=500", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Trucks, 1)

	res, _ = do(t, http.MethodGet, srv.URL+"/trucks?min_payload=heavy", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = do(t, http.MethodGet, srv.URL+"/trucks/fb", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var truck domain.TruckType
	require.NoError(t, json.Unmarshal(body, &truck))
	assert.Equal(t, testTrucks()[0], truck)

	res, _ = do(t, http.MethodGet, srv.URL+"/trucks/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestJurisdictions(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := do(t, http.MethodGet, srv.URL+"/jurisdictions", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out dto.ListJurisdictionsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Jurisdictions, 2)
	assert.Equal(t, "OK", out.Jurisdictions[0].Code)
	assert.Equal(t, 96.0, out.Jurisdictions[0].Legal.Width)
}

func TestSelections(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := do(t, http.MethodPost, srv.URL+"/selections", dto.SelectionRequest{Items: crates(3)})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	var out dto.SelectionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Trucks, 2)
	assert.Equal(t, 1, out.Trucks[0].Rank)
	assert.LessOrEqual(t, out.Trucks[0].Score, out.Trucks[1].Score)

	only := dto.SelectionRequest{Items: crates(1), CandidateFilter: dto.CandidateFilter{TruckIDs: []string{"sd"}}}
	res, body = do(t, http.MethodPost, srv.URL+"/selections", only)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Trucks, 1)
	assert.Equal(t, "sd", out.Trucks[0].TruckID)

	tooWide := []dto.CargoItemRequest{{ID: "tank", Length: 200, Width: 110, Height: 110, Weight: 5000}}
	res, body = do(t, http.MethodPost, srv.URL+"/selections", dto.SelectionRequest{Items: tooWide})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"trucks":[]}`, string(body))
}

func TestSelectionsRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	bad := []dto.CargoItemRequest{{ID: "crate", Length: 0, Width: 48, Height: 48, Weight: 100}}
	res, body := do(t, http.MethodPost, srv.URL+"/selections", dto.SelectionRequest{Items: bad})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), "items[0].length")

	res, _ = do(t, http.MethodPost, srv.URL+"/selections", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, http.MethodPost, srv.URL+"/selections", `{"items":[{"id":"a","length":1,"width":1,"height":1,"weight":1}],"colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	unknown := dto.SelectionRequest{Items: crates(1), CandidateFilter: dto.CandidateFilter{TruckIDs: []string{"nope"}}}
	res, _ = do(t, http.MethodPost, srv.URL+"/selections", unknown)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	dup := dto.SelectionRequest{Items: append(crates(1), crates(1)...)}
	res, _ = do(t, http.MethodPost, srv.URL+"/selections", dup)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	huge := crates(1)
	huge[0].Quantity = domain.MaxManifestUnits + 1
	res, body = do(t, http.MethodPost, srv.URL+"/selections", dto.SelectionRequest{Items: huge})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), "items[0].quantity")

	res, _ = do(t, http.MethodGet, srv.URL+"/selections", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestPermits(t *testing.T) {
	srv := newTestServer(t, nil)

	req := dto.PermitRequest{
		Envelope: dto.EnvelopeRequest{Length: 600, Width: 102, Height: 102, Weight: 45000},
		Route:    []dto.StateSegmentRequest{{StateCode: "TX", Miles: 50}, {StateCode: "OK", Miles: 30}},
	}
	res, body := do(t, http.MethodPost, srv.URL+"/permits", req)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	var out dto.PermitResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Permits, 1)
	assert.Equal(t, "OK", out.Permits[0].StateCode)
	assert.Equal(t, []domain.PermitType{domain.PermitOversizeWidth}, out.Permits[0].Permits)
	assert.Equal(t, 40.0, out.TotalFee)

	req.Route = append(req.Route, dto.StateSegmentRequest{StateCode: "ZZ", Miles: 10})
	res, _ = do(t, http.MethodPost, srv.URL+"/permits", req)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	req.Route = nil
	res, _ = do(t, http.MethodPost, srv.URL+"/permits", req)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPlans(t *testing.T) {
	srv := newTestServer(t, nil)

	req := dto.PlanRequest{
		Items: append(crates(3), dto.CargoItemRequest{ID: "tank", Length: 200, Width: 110, Height: 110, Weight: 5000}),
		Route: []dto.StateSegmentRequest{{StateCode: "TX", Miles: 100}},
	}
	res, body := do(t, http.MethodPost, srv.URL+"/plans", req)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Empty(t, res.Header.Get("X-Cache"))

	var out dto.PlanResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.TruckCount)
	assert.False(t, out.Complete)
	assert.Equal(t, domain.CostBasisRoute, out.CostBasis)
	require.Len(t, out.Unplaceable, 1)
	assert.Equal(t, "tank#1", out.Unplaceable[0].UnitID)
	assert.ElementsMatch(t, []string{"crate#1", "crate#2", "crate#3"}, out.Loads[0].UnitIDs)

	req.Route = []dto.StateSegmentRequest{{StateCode: "ZZ", Miles: 1}}
	res, _ = do(t, http.MethodPost, srv.URL+"/plans", req)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	req.Route = []dto.StateSegmentRequest{{StateCode: "TX", Miles: -5}}
	res, _ = do(t, http.MethodPost, srv.URL+"/plans", req)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPlansAreCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	planCache := cache.NewRedisPlanCache(client, nil)
	t.Cleanup(func() { _ = planCache.Close() })

	srv := newTestServer(t, planCache)
	req := dto.PlanRequest{Items: crates(2)}

	res, first := do(t, http.MethodPost, srv.URL+"/plans", req)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "MISS", res.Header.Get("X-Cache"))

	res, second := do(t, http.MethodPost, srv.URL+"/plans", req)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "HIT", res.Header.Get("X-Cache"))
	assert.Equal(t, first, second)

	// A dead cache must not fail planning.
	mr.Close()
	res, third := do(t, http.MethodPost, srv.URL+"/plans", req)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, string(first), string(third))
}

func TestPlanCacheKeyedByWeightsAndReference(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	planCache := cache.NewRedisPlanCache(client, nil)
	t.Cleanup(func() { _ = planCache.Close() })

	req := dto.PlanRequest{Items: crates(2)}
	post := func(srv *httptest.Server) string {
		t.Helper()
		res, body := do(t, http.MethodPost, srv.URL+"/plans", req)
		require.Equal(t, http.StatusOK, res.StatusCode, string(body))
		return res.Header.Get("X-Cache")
	}

	base := newTestServer(t, planCache)
	assert.Equal(t, "MISS", post(base))
	assert.Equal(t, "HIT", post(base))

	costOnly := newServerWith(t, planCache, services.ScoringWeights{Cost: 1}, testTrucks())
	assert.Equal(t, "MISS", post(costOnly))

	repriced := testTrucks()
	repriced[0].BaseCostPerMile = 1
	assert.Equal(t, "MISS", post(newServerWith(t, planCache, services.DefaultScoringWeights(), repriced)))

	assert.Equal(t, "HIT", post(newTestServer(t, planCache)))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	do(t, http.MethodGet, srv.URL+"/trucks", nil)
	res, body := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `loadplan_http_requests_total{method="GET",path="/trucks",status="200"} 1`)
}
