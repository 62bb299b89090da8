package mangle

import (
	"context"
	"testing"
	"time"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if engine == nil {
		t.Fatal("NewEngine() returned nil")
	}

	if _, err := NewEngine(Config{FactLimit: -1}); err == nil {
		t.Error("NewEngine() accepted a negative fact limit")
	}
}

func TestEngineLoad(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if err := engine.Load(`Decl test_fact(X, Y).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := engine.Load(`this is not datalog`); err == nil {
		t.Error("Load() accepted garbage")
	}
	// the bad fragment must not poison later loads
	if err := engine.Load(`Decl other(X).`); err != nil {
		t.Fatalf("Load() after failure error = %v", err)
	}
}

func TestEngineAddFact(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl item(Name).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := engine.AddFact("item", "apple"); err != nil {
		t.Fatalf("AddFact() error = %v", err)
	}
	if err := engine.AddFact("undeclared", "x"); err == nil {
		t.Error("AddFact() accepted an undeclared predicate")
	}
	if err := engine.AddFact("item", "a", "b"); err == nil {
		t.Error("AddFact() accepted the wrong arity")
	}
}

func TestEngineAddFactWithoutSchema(t *testing.T) {
	engine, _ := NewEngine(DefaultConfig())
	if err := engine.AddFact("item", "apple"); err == nil {
		t.Error("AddFact() without schema should fail")
	}
}

func TestEngineFactLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FactLimit = 2
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl item(Name).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err = engine.AddFacts([]Fact{
		{Predicate: "item", Args: []interface{}{"a"}},
		{Predicate: "item", Args: []interface{}{"b"}},
		{Predicate: "item", Args: []interface{}{"c"}},
	})
	if err == nil {
		t.Error("AddFacts() should fail past the fact limit")
	}
}

func TestEngineFacts(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl item(Name).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_ = engine.AddFact("item", "apple")
	_ = engine.AddFact("item", "banana")

	facts, err := engine.Facts("item")
	if err != nil {
		t.Fatalf("Facts() error = %v", err)
	}
	if len(facts) != 2 {
		t.Errorf("Facts() returned %d facts, want 2", len(facts))
	}

	if _, err := engine.Facts("nothing"); err == nil {
		t.Error("Facts() on an undeclared predicate should fail")
	}
}

func TestEngineMatch(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl record(ID, Value).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_ = engine.AddFact("record", "a", "apple")
	_ = engine.AddFact("record", "b", "banana")

	if facts := engine.Match("record", "a"); len(facts) != 1 {
		t.Errorf("Match() returned %d facts, want 1", len(facts))
	}
	if facts := engine.Match("record"); len(facts) != 2 {
		t.Errorf("Match() returned %d facts, want 2", len(facts))
	}
}

func TestEngineQuery(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	schema := `Decl person(Name, Age) descr [mode("-", "-")].`
	if err := engine.Load(schema); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	facts := []Fact{
		{Predicate: "person", Args: []interface{}{"Alice", int64(30)}},
		{Predicate: "person", Args: []interface{}{"Bob", int64(25)}},
	}
	if err := engine.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := engine.Query(ctx, "person(X, Y)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 2 {
		t.Errorf("Query() returned %d bindings, want 2", len(result.Bindings))
	}
	for _, b := range result.Bindings {
		if _, ok := b["X"]; !ok {
			t.Errorf("binding %v has no X", b)
		}
	}

	if _, err := engine.Query(ctx, ""); err == nil {
		t.Error("Query() accepted an empty query")
	}
	if _, err := engine.Query(ctx, "unknown(X)"); err == nil {
		t.Error("Query() accepted an undeclared predicate")
	}
}

func TestEngineQueryUnifiesArguments(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl record(ID, Value).
Decl pair(X, Y).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := engine.AddFacts([]Fact{
		{Predicate: "record", Args: []interface{}{"a", "apple"}},
		{Predicate: "record", Args: []interface{}{"b", "banana"}},
		{Predicate: "pair", Args: []interface{}{"x", "x"}},
		{Predicate: "pair", Args: []interface{}{"x", "y"}},
	}); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	ctx := context.Background()
	result, err := engine.Query(ctx, `record("a", V)`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 1 || result.Bindings[0]["V"] != "apple" {
		t.Errorf("record(a, V) = %v, want V=apple only", result.Bindings)
	}

	result, err = engine.Query(ctx, "pair(X, X)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 1 || result.Bindings[0]["X"] != "x" {
		t.Errorf("pair(X, X) = %v, want X=x only", result.Bindings)
	}

	result, err = engine.Query(ctx, `record("c", V)`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 0 {
		t.Errorf("record(c, V) = %v, want no answers", result.Bindings)
	}

	if _, err := engine.Query(ctx, "record(X)"); err == nil {
		t.Error("Query() accepted the wrong arity")
	}
}

func TestEngineClear(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl data(Value).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_ = engine.AddFact("data", "test")
	engine.Clear()

	facts, _ := engine.Facts("data")
	if len(facts) != 0 {
		t.Errorf("Facts() after Clear() returned %d facts, want 0", len(facts))
	}

	// schema survives
	if err := engine.AddFact("data", "again"); err != nil {
		t.Fatalf("AddFact() after Clear() error = %v", err)
	}
}

func TestEngineStats(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(`Decl data(Value).`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_ = engine.AddFact("data", "one")

	stats := engine.Stats()
	if stats.PredicateCounts["data"] != 1 {
		t.Errorf("PredicateCounts[data] = %d, want 1", stats.PredicateCounts["data"])
	}
	if stats.TotalFacts != 1 {
		t.Errorf("TotalFacts = %d, want 1", stats.TotalFacts)
	}
}

func TestEngineEvaluateDerivesRules(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	schema := `
Decl edge(X, Y).
Decl path(X, Y).
path(X, Y) :- edge(X, Y).
path(X, Z) :- edge(X, Y), path(Y, Z).
`
	if err := engine.Load(schema); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := engine.AddFacts([]Fact{
		{Predicate: "edge", Args: []interface{}{"a", "b"}},
		{Predicate: "edge", Args: []interface{}{"b", "c"}},
	}); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}
	if facts, _ := engine.Facts("path"); len(facts) != 3 {
		t.Errorf("Facts(path) = %d facts, want 3", len(facts))
	}
	if err := engine.Evaluate(); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := engine.Match("path", "a", "c"); len(got) != 1 {
		t.Errorf("path(a, c) = %v, want one fact", got)
	}
}

func TestEngineEvaluateWithoutProgram(t *testing.T) {
	engine, _ := NewEngine(DefaultConfig())
	if err := engine.Evaluate(); err == nil {
		t.Error("Evaluate() without a program should fail")
	}
}

func TestFactString(t *testing.T) {
	tests := []struct {
		name string
		fact Fact
		want string
	}{
		{
			name: "string args",
			fact: Fact{Predicate: "is_a", Args: []interface{}{"Rex", "dog"}},
			want: `is_a("Rex", "dog").`,
		},
		{
			name: "int args",
			fact: Fact{Predicate: "has_value", Args: []interface{}{"Tom", "age", int64(4)}},
			want: `has_value("Tom", "age", 4).`,
		},
		{
			name: "float args",
			fact: Fact{Predicate: "has_value", Args: []interface{}{"Tom", "weight", 3.25}},
			want: `has_value("Tom", "weight", 3.25).`,
		},
		{
			name: "name constant",
			fact: Fact{Predicate: "status", Args: []interface{}{"/active"}},
			want: `status(/active).`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fact.String(); got != tt.want {
				t.Errorf("Fact.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FactLimit != 100000 {
		t.Errorf("FactLimit = %d, want 100000", cfg.FactLimit)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %v, want 5s", cfg.QueryTimeout)
	}
	if cfg.DerivedFactsLimit != 500000 {
		t.Errorf("DerivedFactsLimit = %d, want 500000", cfg.DerivedFactsLimit)
	}
}
