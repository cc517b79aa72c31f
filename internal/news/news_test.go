package news

import (
	"testing"
)

func TestVisibility(t *testing.T) {
	e := Event{Tick: 5}

	if !e.VisibleTo(Quant, 5) {
		t.Error("quant should see news immediately")
	}
	if e.VisibleTo(Fundamental, 5) {
		t.Error("fundamental should not see news at tick 5")
	}
	if !e.VisibleTo(Fundamental, 6) {
		t.Error("fundamental should see news at tick 6")
	}
	if e.VisibleTo(Retail, 6) {
		t.Error("retail should not see news at tick 6")
	}
	if !e.VisibleTo(Retail, 7) {
		t.Error("retail should see news at tick 7")
	}
}

func TestGenerate_RespectsProbability(t *testing.T) {
	never := NewGenerator([]string{"AAPL"}, 0, 1)
	for tick := int64(0); tick < 100; tick++ {
		if never.Generate(tick) != nil {
			t.Fatal("probability 0 generated an event")
		}
	}

	always := NewGenerator([]string{"AAPL"}, 1, 1)
	ev := always.Generate(0)
	if ev == nil {
		t.Fatal("probability 1 generated nothing")
	}
	if ev.SecurityID != "AAPL" || ev.Headline == "" {
		t.Errorf("malformed event: %+v", ev)
	}
	if ev.Sentiment < -1 || ev.Sentiment > 1 {
		t.Errorf("sentiment out of range: %v", ev.Sentiment)
	}
	if ev.Magnitude < 0 || ev.Magnitude > 1 {
		t.Errorf("magnitude out of range: %v", ev.Magnitude)
	}
}

func TestGenerate_FixedSeedIsReproducible(t *testing.T) {
	run := func() []Event {
		g := NewGenerator([]string{"AAPL", "MSFT"}, 0.4, 99)
		var events []Event
		for tick := int64(0); tick < 50; tick++ {
			if ev := g.Generate(tick); ev != nil {
				events = append(events, *ev)
			}
		}
		return events
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("event counts diverged: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerate_SentimentSignMatchesType(t *testing.T) {
	g := NewGenerator([]string{"AAPL"}, 1, 7)
	pos := map[Type]bool{EarningsBeat: true, AnalystUpgrade: true, ProductLaunch: true, GuidanceRaise: true}
	for tick := int64(0); tick < 100; tick++ {
		ev := g.Generate(tick)
		if ev == nil {
			t.Fatal("expected event every tick")
		}
		if pos[ev.Type] && ev.Sentiment <= 0 {
			t.Errorf("positive type %s with sentiment %v", ev.Type, ev.Sentiment)
		}
		if !pos[ev.Type] && ev.Sentiment >= 0 {
			t.Errorf("negative type %s with sentiment %v", ev.Type, ev.Sentiment)
		}
	}
}
