// Package pricing converts token usage into dollar cost. An unknown
// model is a hard error: billing numbers must never silently default to
// zero.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencouncil/crux/internal/model"
)

// ErrUnknownModel means no rate is on file for the requested model.
var ErrUnknownModel = errors.New("no pricing for model")

// ModelRate is the dollar price per million tokens, input and output
// billed separately.
type ModelRate struct {
	InputPerMTok  float64 `yaml:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok"`
}

// Table maps model names to rates.
type Table struct {
	rates map[string]ModelRate
}

// defaultRates covers the models the providers default to. Versioned
// releases ("gpt-4o-mini-2024-07-18") resolve through prefix matching.
var defaultRates = map[string]ModelRate{
	"gpt-4o":            {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-4o-mini":       {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4.1":           {InputPerMTok: 2.00, OutputPerMTok: 8.00},
	"gpt-4.1-mini":      {InputPerMTok: 0.40, OutputPerMTok: 1.60},
	"claude-3-5-sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-3-5-haiku":  {InputPerMTok: 0.80, OutputPerMTok: 4.00},
	"claude-sonnet-4":   {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"llama3.1":          {InputPerMTok: 0, OutputPerMTok: 0}, // local
	"llama3.2":          {InputPerMTok: 0, OutputPerMTok: 0}, // local
}

// NewTable returns a table with the built-in rates.
func NewTable() *Table {
	rates := make(map[string]ModelRate, len(defaultRates))
	for name, rate := range defaultRates {
		rates[name] = rate
	}
	return &Table{rates: rates}
}

// WithRate adds or overrides a model's rate and returns the table for
// chaining.
func (t *Table) WithRate(modelName string, rate ModelRate) *Table {
	t.rates[modelName] = rate
	return t
}

// Cost prices the given usage for one model. Lookup is exact first, then
// longest matching prefix, so dated release names resolve to their base
// model's rate.
func (t *Table) Cost(modelName string, usage model.TokenUsage) (float64, error) {
	rate, ok := t.lookup(modelName)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, modelName)
	}

	cost := float64(usage.InputTokens)/1_000_000*rate.InputPerMTok +
		float64(usage.OutputTokens)/1_000_000*rate.OutputPerMTok
	return cost, nil
}

func (t *Table) lookup(modelName string) (ModelRate, bool) {
	if rate, ok := t.rates[modelName]; ok {
		return rate, true
	}

	var best string
	for name := range t.rates {
		if strings.HasPrefix(modelName, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelRate{}, false
	}
	return t.rates[best], true
}
