package mangle

import (
	"context"
	"testing"
	"time"
)

func inventionFacts() []Fact {
	return []Fact{
		{Predicate: PredIsA, Args: []interface{}{"Rex", "dog"}},
		{Predicate: PredIsA, Args: []interface{}{"Rex", "animal"}},
		{Predicate: PredIsA, Args: []interface{}{"Fido", "dog"}},
		{Predicate: PredIsA, Args: []interface{}{"Fido", "animal"}},
		{Predicate: PredIsA, Args: []interface{}{"Tom", "cat"}},
		{Predicate: PredIsA, Args: []interface{}{"Tom", "animal"}},
		{Predicate: PredHolds, Args: []interface{}{"chase", "Rex", "Fido"}},
		{Predicate: PredHolds, Args: []interface{}{"chase", "Fido", "Tom"}},
		{Predicate: PredHasValue, Args: []interface{}{"Tom", "age", int64(4)}},
		{Predicate: PredHasValue, Args: []interface{}{"Tom", "coat", "tabby"}},
	}
}

func TestInventionSchemaLoads(t *testing.T) {
	engine, err := NewInventionEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInventionEngine() error = %v", err)
	}
	if err := engine.Replace(inventionFacts()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	facts, err := engine.Facts(PredIsA)
	if err != nil {
		t.Fatalf("Facts() error = %v", err)
	}
	if len(facts) != 6 {
		t.Errorf("Facts(is_a) = %d, want 6", len(facts))
	}
}

func TestInventionSchemaDerivesConnectivity(t *testing.T) {
	engine, err := NewInventionEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInventionEngine() error = %v", err)
	}
	if err := engine.Replace(inventionFacts()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if got := engine.Match(PredRelated, "Fido", "Rex"); len(got) != 1 {
		t.Errorf("related(Fido, Rex) = %v, want one fact", got)
	}
	if got := engine.Match(PredConnected, "Rex", "Tom"); len(got) != 1 {
		t.Errorf("connected(Rex, Tom) = %v, want one fact", got)
	}
	if got := engine.Match(PredConnected, "Tom", "Rex"); len(got) != 1 {
		t.Errorf("connected(Tom, Rex) = %v, want one fact", got)
	}
}

func TestInventionSchemaCountsKinds(t *testing.T) {
	engine, err := NewInventionEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInventionEngine() error = %v", err)
	}
	if err := engine.Replace(inventionFacts()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	counts := map[string]int64{}
	for _, f := range engine.Match(PredKindCount) {
		kind, _ := f.Args[0].(string)
		n, _ := f.Args[1].(int64)
		counts[kind] = n
	}
	if counts["animal"] != 3 || counts["dog"] != 2 || counts["cat"] != 1 {
		t.Errorf("kind_count = %v", counts)
	}
}

func TestReplaceDropsPreviousInvention(t *testing.T) {
	engine, err := NewInventionEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInventionEngine() error = %v", err)
	}
	if err := engine.Replace(inventionFacts()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := engine.Replace([]Fact{{Predicate: PredIsA, Args: []interface{}{"Alice", "person"}}}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	facts, _ := engine.Facts(PredIsA)
	if len(facts) != 1 {
		t.Errorf("Facts(is_a) = %d after Replace, want 1", len(facts))
	}
	if got := engine.Match(PredConnected); len(got) != 0 {
		t.Errorf("connected facts survived Replace: %v", got)
	}
}

func TestInventionQuery(t *testing.T) {
	engine, err := NewInventionEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInventionEngine() error = %v", err)
	}
	if err := engine.Replace(inventionFacts()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := engine.Query(ctx, "is_a(X, Y)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 6 {
		t.Errorf("Query() returned %d bindings, want 6", len(result.Bindings))
	}

	result, err = engine.Query(ctx, `connected("Rex", X)`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	reached := map[interface{}]bool{}
	for _, b := range result.Bindings {
		reached[b["X"]] = true
	}
	if !reached["Tom"] || !reached["Fido"] {
		t.Errorf("connected(Rex, X) reached %v", reached)
	}
}
