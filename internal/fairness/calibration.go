package fairness

import (
	"fmt"
	"log/slog"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// calibrationFile is the YAML layout of a policy calibration file:
//
//	default: balanced
//	policies:
//	  balanced:
//	    max_disparity_minutes: 12
//	  late-night:
//	    filter: all
//	    balance_tolerance: 0.1
type calibrationFile struct {
	Default  string            `koanf:"default"`
	Policies map[string]Policy `koanf:"policies"`
}

// LoadCalibration builds a registry from the built-in presets overlaid with
// the policies in path. Entries that name a preset override only the fields
// they set; new names start from Balanced. An empty path returns the presets.
func LoadCalibration(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load fairness calibration %s: %w", path, err)
	}

	var cf calibrationFile
	if err := k.Unmarshal("", &cf); err != nil {
		return nil, fmt.Errorf("parse fairness calibration %s: %w", path, err)
	}

	base := map[string]Policy{
		PolicyBalanced: Balanced(),
		PolicyStrict:   Strict(),
		PolicyTotal:    Total(),
	}

	for name, override := range cf.Policies {
		start, ok := base[name]
		if !ok {
			start = Balanced()
		}
		start.Name = name
		merged := MergePolicy(start, override)
		if merged != start {
			slog.Info("fairness policy calibrated", "policy", name, "from", start, "to", merged)
		}
		base[name] = merged
	}

	defaultName := cf.Default
	if defaultName == "" {
		defaultName = DefaultPolicyName
	}

	policies := make([]Policy, 0, len(base))
	for _, p := range base {
		policies = append(policies, p)
	}

	r, err := NewRegistry(defaultName, policies...)
	if err != nil {
		return nil, fmt.Errorf("fairness calibration %s: %w", path, err)
	}
	return r, nil
}

// MergePolicy applies the non-zero fields of override to base.
// The name of base is kept.
func MergePolicy(base, override Policy) Policy {
	out := base
	if override.MaxDisparityMinutes != 0 {
		out.MaxDisparityMinutes = override.MaxDisparityMinutes
	}
	if override.BalanceTolerance != 0 {
		out.BalanceTolerance = override.BalanceTolerance
	}
	if override.Filter != "" {
		out.Filter = override.Filter
	}
	if override.Scoring != "" {
		out.Scoring = override.Scoring
	}
	if override.PenaltyWeight != 0 {
		out.PenaltyWeight = override.PenaltyWeight
	}
	if override.FallbackLimit != 0 {
		out.FallbackLimit = override.FallbackLimit
	}
	return out
}
