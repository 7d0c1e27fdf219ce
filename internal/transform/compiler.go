// Package transform compiles a pipeline's ordered transforms into the
// transformation chain and the keyed predicate map of a deployment.
package transform

import (
	"fmt"
	"sort"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// PredicatePrefix starts every generated predicate alias.
const PredicatePrefix = "p"

// Transformation is one link of the runtime transformation chain.
type Transformation struct {
	Type      string         `json:"type"`
	Config    map[string]any `json:"config,omitempty"`
	Predicate string         `json:"predicate,omitempty"`
	Negate    bool           `json:"negate"`
}

// Predicate is a named predicate referenced by transformations.
type Predicate struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Result is the compiled transformation chain with its predicates.
type Result struct {
	Transforms []Transformation
	Predicates map[string]Predicate
}

// PredicateAlias returns the alias for a transform's predicate. It depends
// only on the transform identity, so recompiling is idempotent.
func PredicateAlias(t core.Transform) string {
	return fmt.Sprintf("%s%d", PredicatePrefix, t.ID)
}

// Compile builds the chain in the configured transform order.
func Compile(transforms []core.Transform) (*Result, error) {
	ordered := make([]core.Transform, len(transforms))
	copy(ordered, transforms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	result := &Result{
		Transforms: make([]Transformation, 0, len(ordered)),
		Predicates: make(map[string]Predicate),
	}
	seen := make(map[int64]struct{}, len(ordered))

	for _, t := range ordered {
		if t.Type == "" {
			return nil, core.InvalidArgument("transform %d has no type", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, core.InvalidArgument("duplicate transform id %d", t.ID)
		}
		seen[t.ID] = struct{}{}

		tr := Transformation{
			Type:   t.Type,
			Config: copyConfig(t.Config),
		}
		if t.HasPredicate() {
			alias := PredicateAlias(t)
			tr.Predicate = alias
			tr.Negate = t.Predicate.Negate
			result.Predicates[alias] = Predicate{
				Type:   t.Predicate.Type,
				Config: copyConfig(t.Predicate.Config),
			}
		}
		result.Transforms = append(result.Transforms, tr)
	}

	return result, nil
}

func copyConfig(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
