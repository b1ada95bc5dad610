package fairness

import (
	"fmt"
	"slices"
	"strings"
)

// Names of the built-in policies.
const (
	PolicyBalanced = "balanced"
	PolicyStrict   = "strict"
	PolicyTotal    = "total"
)

// DefaultPolicyName is used when a request does not name a policy.
const DefaultPolicyName = PolicyBalanced

// Balanced keeps a place when the trips differ by less than 15 minutes or
// when neither party carries more than 70% of the combined time.
func Balanced() Policy {
	return Policy{
		Name:                PolicyBalanced,
		MaxDisparityMinutes: 15,
		BalanceTolerance:    0.2,
		Filter:              FilterAny,
		Scoring:             ScoreBalanced,
		PenaltyWeight:       0.5,
		FallbackLimit:       5,
	}
}

// Strict requires both a small disparity and a 30/70 or better split.
func Strict() Policy {
	return Policy{
		Name:                PolicyStrict,
		MaxDisparityMinutes: 20,
		BalanceTolerance:    0.2,
		Filter:              FilterAll,
		Scoring:             ScoreBalanced,
		PenaltyWeight:       0.5,
		FallbackLimit:       5,
	}
}

// Total ignores balance and ranks by combined travel time.
func Total() Policy {
	return Policy{
		Name:          PolicyTotal,
		Filter:        FilterNone,
		Scoring:       ScoreTotal,
		FallbackLimit: 5,
	}
}

// Registry holds the policies a caller may select by name.
type Registry struct {
	policies    map[string]Policy
	defaultName string
}

// NewRegistry validates and indexes policies. The default must be one of them.
func NewRegistry(defaultName string, policies ...Policy) (*Registry, error) {
	r := &Registry{
		policies:    make(map[string]Policy, len(policies)),
		defaultName: defaultName,
	}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.policies[p.Name] = p
	}
	if _, ok := r.policies[defaultName]; !ok {
		return nil, fmt.Errorf("fairness registry: default policy %q is not registered", defaultName)
	}
	return r, nil
}

// DefaultRegistry contains the built-in presets.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultPolicyName, Balanced(), Strict(), Total())
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the named policy; an empty name selects the default.
func (r *Registry) Get(name string) (Policy, error) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.policies[name]
	if !ok {
		return Policy{}, fmt.Errorf("unknown fairness policy %q", name)
	}
	return p, nil
}

// Default returns the default policy.
func (r *Registry) Default() Policy {
	return r.policies[r.defaultName]
}

// DefaultName returns the name of the default policy.
func (r *Registry) DefaultName() string { return r.defaultName }

// Policies returns all policies sorted by name.
func (r *Registry) Policies() []Policy {
	out := make([]Policy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Policy) int { return strings.Compare(a.Name, b.Name) })
	return out
}
