// Package demo generates statistically-plausible substitutes for the five
// input tables. Output is deterministic for a given seed so a demo dashboard
// is stable across reloads.
package demo

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sells-group/ops-dashboard/internal/model"
)

const (
	orderCount     = 5000
	orderSpanDays  = 400
	policyLogCount = 600
)

var policyNodes = []weighted{
	{"Node1_high_risk", 0.35},
	{"Node2_segment_geo", 0.45},
	{"Node3_stable_hold", 0.20},
}

var reviewScores = []struct {
	score  float64
	weight float64
}{
	{5, 0.50}, {4, 0.25}, {3, 0.15}, {2, 0.07}, {1, 0.03},
}

var incidentTitles = []string{
	"Carrier outage in PR",
	"API throttle on checkout",
	"Label printer backlog at hub",
	"Payment gateway retries spiking",
}

type weighted struct {
	value  string
	weight float64
}

// Generator produces the demo tables from a seeded random stream.
type Generator struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// New creates a Generator. The same seed always yields the same tables.
func New(seed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

// Orders generates the order facts table: purchases spread over the 400
// days ending at ref, ~98% on time, gamma-distributed delivery times and
// revenue.
func (g *Generator) Orders(ref time.Time) []model.Order {
	start := ref.AddDate(0, 0, -orderSpanDays)
	orders := make([]model.Order, 0, orderCount)

	for i := 0; i < orderCount; i++ {
		purchased := start.AddDate(0, 0, g.rng.Intn(orderSpanDays+1)).
			Add(time.Duration(g.rng.Intn(24)) * time.Hour)
		deliveryDays := g.gamma(4.5, 2.2)
		delivered := purchased.Add(time.Duration(deliveryDays * 24 * float64(time.Hour)))
		estimated := purchased.AddDate(0, 0, 5+g.rng.Intn(7))

		orders = append(orders, model.Order{
			ID:                  fmt.Sprintf("demo-%05d", i+1),
			PurchasedAt:         purchased,
			DeliveredAt:         &delivered,
			EstimatedDeliveryAt: &estimated,
			OnTime:              g.rng.Float64() < 0.98,
			DeliveryDays:        deliveryDays,
			ReviewScore:         g.reviewScore(),
			GrossRevenue:        g.gamma(3, 50),
		})
	}
	return orders
}

// Segments returns five fixed cohorts mirroring a seasoned segmentation of
// an e-commerce order book.
func (g *Generator) Segments() []model.Segment {
	return []model.Segment{
		{Name: "S1 Urban Fast-Track", Rule: "state in {SP,RJ} & Top10", Orders: 2300, OTDPct: 95.2, P90DeliveryDays: 11.8, RepeatPct: 22.0, GMV90d: 2_300_000, Play: "Express if p90>7d"},
		{Name: "S2 Long-tail Risk States", Rule: "low OTD states & Top10", Orders: 1800, OTDPct: 92.0, P90DeliveryDays: 12.3, RepeatPct: 14.0, GMV90d: 1_700_000, Play: "ETA+Suppress backorder"},
		{Name: "S3 Repeat Loyalists", Rule: "repeat_flag_90d=1", Orders: 1200, OTDPct: 94.8, P90DeliveryDays: 14.0, RepeatPct: 41.0, GMV90d: 1_200_000, Play: "Coupon next order"},
		{Name: "S4 Newcomers", Rule: "orders_count_90d=1", Orders: 2600, OTDPct: 94.2, P90DeliveryDays: 14.8, RepeatPct: 0.0, GMV90d: 2_500_000, Play: "First-order assurance"},
		{Name: "S5 Heavy-Freight", Rule: "freight top 10%", Orders: 900, OTDPct: 95.6, P90DeliveryDays: 20.1, RepeatPct: 9.0, GMV90d: 1_000_000, Play: "Carrier switch / weight cap"},
	}
}

// Impact generates three scenario rows per segment with the derived
// financial columns filled in via ImpactRow.Derive.
func (g *Generator) Impact(segments []model.Segment) []model.ImpactRow {
	scenarios := []struct {
		name         model.Scenario
		upliftPct    float64
		costPerOrder float64
	}{
		{model.ScenarioOptimistic, 6, 0.8},
		{model.ScenarioBase, 3, 0.6},
		{model.ScenarioPessimistic, 0.5, 0.4},
	}

	rows := make([]model.ImpactRow, 0, len(segments)*len(scenarios))
	for _, seg := range segments {
		aov := 0.0
		if seg.Orders > 0 {
			aov = math.Round(seg.GMV90d/float64(seg.Orders)*100) / 100
		}
		for _, sc := range scenarios {
			row := model.ImpactRow{
				Segment:      seg.Name,
				Scenario:     sc.name,
				BaseGMV:      seg.GMV90d,
				Orders:       seg.Orders,
				AOV:          aov,
				UpliftPct:    sc.upliftPct,
				CostPerOrder: sc.costPerOrder,
				TakeRate:     0.12,
			}
			row.Derive()
			rows = append(rows, row)
		}
	}
	return rows
}

// PolicyLog generates 600 firings across an hourly grid covering the seven
// days ending at ref, three nodes weighted toward the geo-segmentation node,
// guardrails tripping ~15% of the time.
func (g *Generator) PolicyLog(ref time.Time) []model.PolicyFiring {
	gridStart := ref.AddDate(0, 0, -6)
	hours := int(ref.Sub(gridStart).Hours()) + 1

	log := make([]model.PolicyFiring, 0, policyLogCount)
	for i := 0; i < policyLogCount; i++ {
		log = append(log, model.PolicyFiring{
			Timestamp:      gridStart.Add(time.Duration(g.rng.Intn(hours)) * time.Hour),
			Node:           g.pickWeighted(policyNodes),
			GuardrailFired: g.rng.Float64() < 0.15,
		})
	}
	return log
}

// Incidents generates two open incidents shortly before ref.
func (g *Generator) Incidents(ref time.Time) []model.Incident {
	return []model.Incident{
		{
			ID:       fmt.Sprintf("%d", 100+g.rng.Intn(100)),
			OpenedAt: ref.AddDate(0, 0, -3),
			Severity: "high",
			Title:    g.faker.RandomString(incidentTitles),
			Status:   "open",
		},
		{
			ID:       fmt.Sprintf("%d", 200+g.rng.Intn(100)),
			OpenedAt: ref.AddDate(0, 0, -1),
			Severity: "medium",
			Title:    g.faker.RandomString(incidentTitles),
			Status:   "open",
		},
	}
}

func (g *Generator) reviewScore() float64 {
	u := g.rng.Float64()
	acc := 0.0
	for _, rs := range reviewScores {
		acc += rs.weight
		if u < acc {
			return rs.score
		}
	}
	return reviewScores[len(reviewScores)-1].score
}

func (g *Generator) pickWeighted(choices []weighted) string {
	u := g.rng.Float64()
	acc := 0.0
	for _, c := range choices {
		acc += c.weight
		if u < acc {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

// gamma draws from a gamma distribution with the given shape and scale
// using the Marsaglia-Tsang method.
func (g *Generator) gamma(shape, scale float64) float64 {
	if shape < 1 {
		return g.gamma(shape+1, scale) * math.Pow(g.rng.Float64(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := g.rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := g.rng.Float64()
		if u < 1-0.0331*x*x*x*x || math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
