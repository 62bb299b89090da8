package config

// MangleConfig configures the invention fact engine.
type MangleConfig struct {
	FactLimit         int    `yaml:"fact_limit"`
	DerivedFactsLimit int    `yaml:"derived_facts_limit"`
	QueryTimeout      string `yaml:"query_timeout"`
}
