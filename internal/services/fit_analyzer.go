package services

import (
	"cmp"
	"load-planner-service/internal/domain"
	"math"
	"slices"
	"sort"
	"strings"
)

// Tolerance for comparing accumulated inch and pound sums against limits.
const epsilon = 1e-9

// FitAnalyzer decides whether a set of cargo units fits one truck deck, and how.
//
// Units are laid out in shelves running front-to-back; each shelf holds
// columns side by side across the deck width. A column is one unit, or a stack
// of identical units of a stackable, non-fragile item. The units are taken in
// item id order (and, failing that, in reverse item id order), and the shelf
// breaks, the orientation of each item within a shelf and the stack heights
// are chosen to keep the load as low as possible and then as short as
// possible.
//
// None of those choices depend on how the sizes of different items compare,
// so growing any item can only take layouts away: a set that does not fit
// never starts fitting when an item gets bigger or heavier, and the lowest
// achievable load height never drops. Identical inputs always produce
// identical results, whatever order the units arrive in.
type FitAnalyzer struct{}

func NewFitAnalyzer() *FitAnalyzer { return &FitAnalyzer{} }

// unitPlan carries the per-unit orientation analysis computed up front.
type unitPlan struct {
	unit      domain.CargoUnit
	options   []domain.Orientation // deck-fitting orientations, preferred first
	native    domain.Orientation
	irregular bool
	supports  bool // identical units may be stacked on it
}

// itemGroup is every unit of one item, in unit order.
type itemGroup struct {
	plan  unitPlan
	units []domain.CargoUnit
}

// slot is one position in the packing sequence.
type slot struct {
	group *itemGroup
	index int // into group.units
}

// columnPick is how one run of identical units is set down inside a shelf.
type columnPick struct {
	group       *itemGroup
	first       int // index into group.units of the run's first unit
	count       int
	orientation domain.Orientation
	perColumn   int
	columns     int
	width       float64
}

type shelfPlan struct {
	depth float64
	width float64
	picks []columnPick
}

// Analyze fits units onto truck. It never fails; infeasibility is reported
// through FitResult.Feasible and FitResult.Reason.
func (a *FitAnalyzer) Analyze(units []domain.CargoUnit, truck domain.TruckType) domain.FitResult {
	if len(units) == 0 {
		return domain.FitResult{
			TruckID:    truck.ID,
			Feasible:   true,
			Placements: []domain.Placement{},
			Flagged:    []domain.FlaggedUnit{},
		}
	}

	// An oversized unit rules the truck out regardless of the rest of the set.
	groups := map[string]*itemGroup{}
	for _, u := range units {
		p, reason := planUnit(u, truck)
		if reason != domain.ReasonNone {
			return domain.Infeasible(truck.ID, reason, u.ID)
		}
		g, ok := groups[u.ItemID]
		if !ok {
			g = &itemGroup{plan: p}
			groups[u.ItemID] = g
		}
		g.units = append(g.units, u)
	}

	totalWeight := 0.0
	for _, u := range units {
		totalWeight += u.Weight()
	}
	if totalWeight > truck.MaxPayload+epsilon {
		return domain.Infeasible(truck.ID, domain.ReasonExceedsWeight, "")
	}
	// Per-axle proxy: no single unit may outweigh what one axle can carry.
	for _, u := range units {
		if u.Weight() > truck.AxleWeightLimit+epsilon {
			return domain.Infeasible(truck.ID, domain.ReasonExceedsAxleWeight, u.ID)
		}
	}

	ordered := make([]*itemGroup, 0, len(groups))
	for _, g := range groups {
		slices.SortFunc(g.units, compareUnits)
		ordered = append(ordered, g)
	}
	slices.SortFunc(ordered, func(a, b *itemGroup) int { return strings.Compare(a.plan.unit.ItemID, b.plan.unit.ItemID) })

	sequences := [][]slot{sequence(ordered)}
	if len(ordered) > 1 {
		reversed := slices.Clone(ordered)
		slices.Reverse(reversed)
		sequences = append(sequences, sequence(reversed))
	}

	heights := columnHeights(ordered, truck)
	if _, ok := packAny(sequences, heights[len(heights)-1], truck); !ok {
		return domain.Infeasible(truck.ID, domain.ReasonExceedsLength, "")
	}
	// Feasibility only grows with the height cap, so search for the lowest.
	lo := sort.Search(len(heights), func(i int) bool {
		_, ok := packAny(sequences, heights[i], truck)
		return ok
	})
	shelves, _ := packAny(sequences, heights[lo], truck)

	return describe(ordered, shelves, truck, totalWeight)
}

// describe turns a packing into placements, utilization and the cargo envelope.
func describe(groups []*itemGroup, shelves []shelfPlan, truck domain.TruckType, totalWeight float64) domain.FitResult {
	var placements []domain.Placement
	usedLength, usedWidth, usedHeight := 0.0, 0.0, 0.0
	for k, s := range shelves {
		y := 0.0
		for _, p := range s.picks {
			for i := range p.count {
				col, level := i/p.perColumn, i%p.perColumn
				u := p.group.units[p.first+i]
				placements = append(placements, domain.Placement{
					UnitID:      u.ID,
					ItemID:      u.ItemID,
					Orientation: p.orientation,
					Rotated:     p.orientation != p.group.plan.native,
					X:           usedLength,
					Y:           y + float64(col)*p.orientation.Width,
					Z:           float64(level) * p.orientation.Height,
					Shelf:       k,
					StackLevel:  level,
				})
			}
			usedHeight = max(usedHeight, float64(min(p.count, p.perColumn))*p.orientation.Height)
			y += p.width
		}
		usedLength += s.depth
		usedWidth = max(usedWidth, s.width)
	}

	flagged := []domain.FlaggedUnit{}
	cargoVolume := 0.0
	for _, g := range groups {
		for _, u := range g.units {
			if g.plan.irregular {
				flagged = append(flagged, domain.FlaggedUnit{UnitID: u.ID, Flag: domain.FlagIrregularBoundingBox})
			}
			if !fitsDeck(g.plan.native, truck) {
				flagged = append(flagged, domain.FlaggedUnit{UnitID: u.ID, Flag: domain.FlagRotated})
			}
			cargoVolume += u.Volume()
		}
	}

	return domain.FitResult{
		TruckID:           truck.ID,
		Feasible:          true,
		Placements:        placements,
		LengthUtilization: percent(usedLength, truck.DeckLength),
		WidthUtilization:  percent(usedWidth, truck.DeckWidth),
		HeightUtilization: percent(usedHeight, truck.DeckHeight),
		VolumeUtilization: percent(cargoVolume, truck.DeckVolume()),
		WeightUtilization: percent(totalWeight, truck.MaxPayload),
		Envelope: domain.Envelope{
			Length: usedLength,
			Width:  usedWidth,
			Height: usedHeight,
			Weight: totalWeight,
		},
		Flagged: flagged,
	}
}

// compareUnits orders units of one item by their copy number; ids share the
// "<item>#" prefix, so a shorter id is a smaller number.
func compareUnits(a, b domain.CargoUnit) int {
	if c := cmp.Compare(len(a.ID), len(b.ID)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func sequence(groups []*itemGroup) []slot {
	var out []slot
	for _, g := range groups {
		for i := range g.units {
			out = append(out, slot{group: g, index: i})
		}
	}
	return out
}

// columnHeights lists every column height the set can produce, ascending.
func columnHeights(groups []*itemGroup, truck domain.TruckType) []float64 {
	var out []float64
	for _, g := range groups {
		for _, o := range g.plan.options {
			for k := 1; float64(k)*o.Height <= truck.DeckHeight+epsilon; k++ {
				out = append(out, float64(k)*o.Height)
				if !g.plan.supports || k == len(g.units) {
					break
				}
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// packAny returns the packing of the first sequence that fits under the
// height cap.
func packAny(sequences [][]slot, heightCap float64, truck domain.TruckType) ([]shelfPlan, bool) {
	for _, seq := range sequences {
		if shelves, ok := pack(seq, heightCap, truck); ok {
			return shelves, true
		}
	}
	return nil, false
}

// pack splits seq into consecutive shelves with the least total depth. On a
// tie the later break wins, which keeps the front shelves full.
func pack(seq []slot, heightCap float64, truck domain.TruckType) ([]shelfPlan, bool) {
	n := len(seq)
	best := make([]float64, n+1)
	prev := make([]int, n+1)
	chosen := make([]shelfPlan, n+1)
	for i := 1; i <= n; i++ {
		best[i] = math.Inf(1)
	}

	for j := 0; j < n; j++ {
		if math.IsInf(best[j], 1) {
			continue
		}
		for i := j + 1; i <= n; i++ {
			s, ok := fitShelf(seq[j:i], heightCap, truck)
			if !ok {
				// A longer run only needs more width.
				break
			}
			if total := best[j] + s.depth; total < best[i]+epsilon {
				best[i], prev[i], chosen[i] = total, j, s
			}
		}
	}
	if best[n] > truck.DeckLength+epsilon {
		return nil, false
	}

	var shelves []shelfPlan
	for i := n; i > 0; i = prev[i] {
		shelves = append(shelves, chosen[i])
	}
	slices.Reverse(shelves)
	return shelves, true
}

// fitShelf finds the shallowest depth at which the units of one shelf fit
// across the deck width, each run of identical units in a single orientation.
func fitShelf(units []slot, heightCap float64, truck domain.TruckType) (shelfPlan, bool) {
	var runs []columnPick
	for _, s := range units {
		if n := len(runs); n > 0 && runs[n-1].group == s.group {
			runs[n-1].count++
			continue
		}
		runs = append(runs, columnPick{group: s.group, first: s.index, count: 1})
	}

	var depths []float64
	for _, r := range runs {
		for _, o := range r.group.plan.options {
			if o.Height <= heightCap+epsilon {
				depths = append(depths, o.Length)
			}
		}
	}
	slices.Sort(depths)
	depths = slices.Compact(depths)

	for _, d := range depths {
		width := 0.0
		picks := make([]columnPick, 0, len(runs))
		for _, r := range runs {
			p, ok := pickColumns(r, d, heightCap)
			if !ok {
				width = math.Inf(1)
				break
			}
			width += p.width
			picks = append(picks, p)
		}
		if width <= truck.DeckWidth+epsilon {
			return shelfPlan{depth: d, width: width, picks: picks}, true
		}
	}
	return shelfPlan{}, false
}

// pickColumns chooses the orientation that sets a run down in the least
// width without exceeding the shelf depth or the height cap. Ties keep the
// preferred (lower) orientation.
func pickColumns(r columnPick, depth, heightCap float64) (columnPick, bool) {
	found := false
	best := r
	for _, o := range r.group.plan.options {
		if o.Length > depth+epsilon || o.Height > heightCap+epsilon {
			continue
		}
		perColumn := 1
		if r.group.plan.supports {
			perColumn = max(1, int((heightCap+epsilon)/o.Height))
		}
		columns := (r.count + perColumn - 1) / perColumn
		width := float64(columns) * o.Width
		if !found || width < best.width-epsilon {
			found = true
			best.orientation, best.perColumn, best.columns, best.width = o, perColumn, columns, width
		}
	}
	return best, found
}

// planUnit works out which orientations of a unit fit the bare deck.
// When none does, the reason names the first axis that cannot be satisfied.
func planUnit(u domain.CargoUnit, truck domain.TruckType) (unitPlan, domain.FitReason) {
	item := u.Item
	all := candidateOrientations(item)

	options := make([]domain.Orientation, 0, len(all))
	widthOK, crossOK := false, false
	for _, o := range all {
		if o.Width <= truck.DeckWidth+epsilon {
			widthOK = true
			if o.Height <= truck.DeckHeight+epsilon {
				crossOK = true
			}
		}
		if fitsDeck(o, truck) {
			options = append(options, o)
		}
	}

	if len(options) == 0 {
		switch {
		case !widthOK:
			return unitPlan{}, domain.ReasonExceedsWidth
		case !crossOK:
			return unitPlan{}, domain.ReasonExceedsHeight
		default:
			return unitPlan{}, domain.ReasonExceedsLength
		}
	}

	irregular := item.Geometry == domain.GeometryIrregular
	return unitPlan{
		unit:      u,
		options:   options,
		native:    domain.Orientation{Length: item.Length, Width: item.Width, Height: item.Height},
		irregular: irregular,
		supports:  item.Stackable && !item.Fragile && !irregular,
	}, domain.ReasonNone
}

// candidateOrientations lists allowed rotations, preferred first: lowest height,
// then narrowest width, then shortest length.
func candidateOrientations(item domain.CargoItem) []domain.Orientation {
	l, w, h := item.Length, item.Width, item.Height

	var raw []domain.Orientation
	switch item.Geometry {
	case domain.GeometryIrregular:
		raw = []domain.Orientation{{Length: l, Width: w, Height: h}}
	case domain.GeometryCylinder:
		// Rolling axis (the item length) stays horizontal.
		raw = []domain.Orientation{
			{Length: l, Width: w, Height: h},
			{Length: l, Width: h, Height: w},
			{Length: w, Width: l, Height: h},
			{Length: h, Width: l, Height: w},
		}
	default:
		raw = []domain.Orientation{
			{Length: l, Width: w, Height: h},
			{Length: l, Width: h, Height: w},
			{Length: w, Width: l, Height: h},
			{Length: w, Width: h, Height: l},
			{Length: h, Width: l, Height: w},
			{Length: h, Width: w, Height: l},
		}
	}

	out := make([]domain.Orientation, 0, len(raw))
	for _, o := range raw {
		if !slices.Contains(out, o) {
			out = append(out, o)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Orientation) int {
		if c := cmp.Compare(a.Height, b.Height); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Width, b.Width); c != 0 {
			return c
		}
		return cmp.Compare(a.Length, b.Length)
	})
	return out
}

func fitsDeck(o domain.Orientation, truck domain.TruckType) bool {
	return o.Length <= truck.DeckLength+epsilon &&
		o.Width <= truck.DeckWidth+epsilon &&
		o.Height <= truck.DeckHeight+epsilon
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
