package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

const (
	minSynthetic    = 5
	maxSynthetic    = 8
	minOffsetDeg    = 0.002
	offsetRangeDeg  = 0.004
	syntheticDetail = "Reported hazard"
)

// Generator produces stand-in hazards scattered along the start-end line. It
// is only used when no live hazard data is available.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator. A zero seed draws a random seed; any other
// value makes the output reproducible.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns between 5 and 8 synthetic hazards. Each is placed at a
// uniformly random point of the start-end segment, then pushed 0.002-0.006
// degrees away in a random direction, with a uniformly random category.
func (g *Generator) Generate(start, end domain.Coordinate) []domain.Hazard {
	g.mu.Lock()
	defer g.mu.Unlock()

	categories := domain.Categories()
	n := minSynthetic + g.rng.IntN(maxSynthetic-minSynthetic+1)
	hazards := make([]domain.Hazard, n)
	for i := range hazards {
		t := g.rng.Float64()
		offset := minOffsetDeg + g.rng.Float64()*offsetRangeDeg
		angle := g.rng.Float64() * 2 * math.Pi

		hazards[i] = domain.Hazard{
			ID: fmt.Sprintf("synthetic-%d", i+1),
			Location: domain.Coordinate{
				Lat: start.Lat + (end.Lat-start.Lat)*t + offset*math.Cos(angle),
				Lon: start.Lon + (end.Lon-start.Lon)*t + offset*math.Sin(angle),
			},
			Category:    categories[g.rng.IntN(len(categories))],
			Description: syntheticDetail,
			TimeAgo:     "Just now",
			Synthetic:   true,
		}
	}
	return hazards
}
