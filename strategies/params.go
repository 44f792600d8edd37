package strategies

import "fmt"

// ParamType tags how a parameter value is interpreted.
type ParamType string

const (
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
)

// ParamSpec declares one strategy parameter: its name, type, default and
// bounds. Bounds are inclusive.
type ParamSpec struct {
	Name    string    `json:"name" yaml:"name"`
	Type    ParamType `json:"type" yaml:"type"`
	Default float64   `json:"default" yaml:"default"`
	Min     float64   `json:"min" yaml:"min"`
	Max     float64   `json:"max" yaml:"max"`
	Help    string    `json:"help,omitempty" yaml:"help,omitempty"`
}

// Schema is the ordered parameter declaration of a strategy.
type Schema []ParamSpec

// Resolve merges user-supplied values over the schema defaults and validates
// them. Unknown names, out-of-bounds values and fractional values for int
// parameters are rejected. The result is a plain key-value map, safe to
// serialize into configuration or the journal.
func (s Schema) Resolve(values map[string]float64) (Values, error) {
	out := make(Values, len(s))
	for _, spec := range s {
		out[spec.Name] = spec.Default
	}

	for name, v := range values {
		spec, ok := s.lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		if v < spec.Min || v > spec.Max {
			return nil, fmt.Errorf("parameter %q = %v out of bounds [%v, %v]",
				name, v, spec.Min, spec.Max)
		}
		if spec.Type == ParamInt && v != float64(int64(v)) {
			return nil, fmt.Errorf("parameter %q = %v must be a whole number", name, v)
		}
		out[name] = v
	}

	return out, nil
}

func (s Schema) lookup(name string) (ParamSpec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return ParamSpec{}, false
}

// Values is a resolved, validated parameter set.
type Values map[string]float64

// Int returns the named parameter as an int.
func (v Values) Int(name string) int { return int(v[name]) }

// Float returns the named parameter.
func (v Values) Float(name string) float64 { return v[name] }
