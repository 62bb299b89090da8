package parser

// Bindings are the segments captured by one rule attempt. They are created
// fresh for every attempt, so nothing leaks from a rule that failed part way.
type Bindings struct {
	values map[string]any
}

func newBindings() Bindings {
	return Bindings{values: make(map[string]any)}
}

// with binds name to v for the duration of k, restoring the previous value
// if k fails.
func (b Bindings) with(name string, v any, k func() bool) bool {
	old, had := b.values[name]
	b.values[name] = v
	if k() {
		return true
	}
	if had {
		b.values[name] = old
	} else {
		delete(b.values, name)
	}
	return false
}

// Has reports whether name was bound.
func (b Bindings) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

func get[T any](b Bindings, name string) T {
	v, _ := b.values[name].(T)
	return v
}

func (b Bindings) Noun(name string) NounRef        { return get[NounRef](b, name) }
func (b Bindings) Nouns(name string) []NounRef     { return get[[]NounRef](b, name) }
func (b Bindings) Adjective(name string) AdjRef    { return get[AdjRef](b, name) }
func (b Bindings) Adjectives(name string) []AdjRef { return get[[]AdjRef](b, name) }
func (b Bindings) Verb(name string) VerbRef        { return get[VerbRef](b, name) }
func (b Bindings) Proper(name string) ProperRef    { return get[ProperRef](b, name) }
func (b Bindings) Number(name string) Number       { return get[Number](b, name) }
func (b Bindings) Text(name string) string         { return get[string](b, name) }
func (b Bindings) Bool(name string) bool           { return get[bool](b, name) }
func (b Bindings) Float(name string) float64       { return get[float64](b, name) }
func (b Bindings) Words(name string) []string      { return get[[]string](b, name) }
func (b Bindings) WordLists(name string) [][]string {
	return get[[][]string](b, name)
}
