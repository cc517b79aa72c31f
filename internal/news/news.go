// Package news generates random market news events. Different
// audiences see an event at different ticks: quants immediately,
// fundamental traders one tick later, retail two ticks later.
package news

import (
	"fmt"
	"math/rand"
)

// Type classifies a news event.
type Type string

const (
	EarningsBeat     Type = "earnings_beat"
	EarningsMiss     Type = "earnings_miss"
	AnalystUpgrade   Type = "analyst_upgrade"
	AnalystDowngrade Type = "analyst_downgrade"
	ProductLaunch    Type = "product_launch"
	Scandal          Type = "scandal"
	GuidanceRaise    Type = "guidance_raise"
	GuidanceCut      Type = "guidance_cut"
)

// Audience is a class of market participant with its own news delay.
type Audience int

const (
	Quant       Audience = iota // algorithmic feeds, sees news immediately
	Fundamental                 // reads the report first, +1 tick
	Retail                      // social media delay, +2 ticks
)

// Event is one piece of news about a security.
type Event struct {
	Tick       int64   `json:"tick"`
	SecurityID string  `json:"security_id"`
	Type       Type    `json:"type"`
	Headline   string  `json:"headline"`
	Sentiment  float64 `json:"sentiment"` // -1 (very bad) .. +1 (very good)
	Magnitude  float64 `json:"magnitude"` // 0 .. 1
}

// VisibleTo reports whether the audience can see the event at the
// given tick.
func (e Event) VisibleTo(a Audience, tick int64) bool {
	switch a {
	case Quant:
		return tick >= e.Tick
	case Fundamental:
		return tick >= e.Tick+1
	default:
		return tick >= e.Tick+2
	}
}

var positive = []Type{EarningsBeat, AnalystUpgrade, ProductLaunch, GuidanceRaise}
var negative = []Type{EarningsMiss, AnalystDowngrade, Scandal, GuidanceCut}

var headlines = map[Type]string{
	EarningsBeat:     "%s crushes quarterly earnings, guides higher",
	EarningsMiss:     "%s misses earnings expectations",
	AnalystUpgrade:   "Analysts upgrade %s to buy",
	AnalystDowngrade: "Analysts downgrade %s to underperform",
	ProductLaunch:    "%s unveils new flagship product",
	Scandal:          "%s hit by accounting scandal",
	GuidanceRaise:    "%s raises full-year guidance",
	GuidanceCut:      "%s cuts full-year guidance",
}

// Generator produces at most one random event per tick.
type Generator struct {
	securities  []string
	probability float64
	rng         *rand.Rand
}

// NewGenerator creates a seeded generator. probability is the per-tick
// chance that any event fires.
func NewGenerator(securities []string, probability float64, seed int64) *Generator {
	return &Generator{
		securities:  append([]string(nil), securities...),
		probability: probability,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Generate rolls for an event at the given tick; nil when quiet.
func (g *Generator) Generate(tick int64) *Event {
	if len(g.securities) == 0 || g.rng.Float64() >= g.probability {
		return nil
	}

	security := g.securities[g.rng.Intn(len(g.securities))]

	var t Type
	sign := 1.0
	if g.rng.Float64() < 0.5 {
		t = positive[g.rng.Intn(len(positive))]
	} else {
		t = negative[g.rng.Intn(len(negative))]
		sign = -1.0
	}

	return &Event{
		Tick:       tick,
		SecurityID: security,
		Type:       t,
		Headline:   fmt.Sprintf(headlines[t], security),
		Sentiment:  sign * (0.3 + 0.7*g.rng.Float64()),
		Magnitude:  0.1 + 0.9*g.rng.Float64(),
	}
}
