package domain

// presentationOrder is the fixed order routes are shown in. The safe variant
// leads as the recommended default.
var presentationOrder = []Variant{VariantSafe, VariantBalanced, VariantFast}

// Rank orders routes for presentation: safe, balanced, fast. Scores do not
// affect the order. Routes with an unknown variant are dropped.
func Rank(routes []Route) []Route {
	byVariant := make(map[Variant]Route, len(routes))
	for _, r := range routes {
		byVariant[r.Variant] = r
	}
	ranked := make([]Route, 0, len(routes))
	for _, v := range presentationOrder {
		if r, ok := byVariant[v]; ok {
			ranked = append(ranked, r)
		}
	}
	return ranked
}

// ScoreRoutes synthesizes and scores all variants for one request. When
// start equals end every variant collapses to a zero-length path with no
// hazards and a perfect score. The result is in synthesis order (ids 1..3).
func ScoreRoutes(start, end Coordinate, hazards []Hazard) []Route {
	routes := make([]Route, 0, len(variants))
	if start == end {
		for _, v := range Variants() {
			routes = append(routes, NewRoute(v, CollapsedPath(start), 0))
		}
		return routes
	}

	idx := NewHazardIndex(hazards, CorridorRadiusKm)
	paths := Synthesize(start, end)
	for _, v := range Variants() {
		path := paths[v]
		routes = append(routes, NewRoute(v, path, idx.CountNearby(path)))
	}
	return routes
}
