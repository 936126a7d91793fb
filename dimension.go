package magcad

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// MalformedDimension reports a dimension value that is neither a plain
// number, a tolerance record, nor an evaluable expression string.
type MalformedDimension struct {
	Key   string
	Value interface{}
}

func (e *MalformedDimension) Error() string {
	return fmt.Sprintf("malformed dimension '%s': %#v", e.Key, e.Value)
}

// ResolveDimensions flattens a raw dimension map into plain nominal scalars.
// Values may be numbers, tolerance records ({minimum, maximum, nominal}) or
// expression strings referencing other keys ("A/2"). Resolution order per
// key: nominal, else the min/max average (rounded to 1e-6), else whichever
// single bound is present, else 0. The 'alpha' key is an angle, not a
// geometric extent, and is dropped from the output.
func ResolveDimensions(raw map[string]interface{}) (map[string]float64, error) {
	dims := make(map[string]float64, len(raw))
	exprs := make(map[string]string)
	for key, value := range raw {
		if key == "alpha" {
			continue
		}
		switch v := value.(type) {
		case float64:
			dims[key] = v
		case int:
			dims[key] = float64(v)
		case string:
			exprs[key] = v // resolved below, once the numeric keys are known
		case map[string]interface{}:
			nominal, err := resolveTolerance(key, v)
			if err != nil {
				return nil, err
			}
			dims[key] = nominal
		default:
			return nil, &MalformedDimension{Key: key, Value: value}
		}
	}
	if len(exprs) > 0 {
		params := make(map[string]interface{}, len(dims))
		for key, value := range dims {
			params[key] = value
		}
		for key, expr_str := range exprs {
			expr, err := govaluate.NewEvaluableExpression(expr_str)
			if err != nil {
				return nil, &MalformedDimension{Key: key, Value: expr_str}
			}
			value, err := expr.Evaluate(params)
			if err != nil {
				return nil, &MalformedDimension{Key: key, Value: expr_str}
			}
			num, ok := value.(float64)
			if !ok {
				return nil, &MalformedDimension{Key: key, Value: expr_str}
			}
			dims[key] = num
		}
	}
	return dims, nil
}

// angleDimension reads an angular key (degrees) straight off the raw map,
// since ResolveDimensions drops angles from the geometric extents. Absent or
// unreadable values come back as 0 so the family default applies.
func angleDimension(raw map[string]interface{}, key string) float64 {
	value, present := raw[key]
	if !present {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case map[string]interface{}:
		if num, err := resolveTolerance(key, v); err == nil {
			return num
		}
	}
	return 0
}

func resolveTolerance(key string, record map[string]interface{}) (float64, error) {
	bound := func(name string) (float64, bool, error) {
		value, present := record[name]
		if !present || value == nil {
			return 0, false, nil
		}
		num, ok := value.(float64)
		if !ok {
			return 0, false, &MalformedDimension{Key: key, Value: record}
		}
		return num, true, nil
	}
	nominal, has_nominal, err := bound("nominal")
	if err != nil {
		return 0, err
	}
	if has_nominal {
		return nominal, nil
	}
	minimum, has_min, err := bound("minimum")
	if err != nil {
		return 0, err
	}
	maximum, has_max, err := bound("maximum")
	if err != nil {
		return 0, err
	}
	switch {
	case has_min && has_max:
		// round the midpoint to 1e-6 so tolerance averaging does not drift
		return math.Round((minimum+maximum)/2*1e6) / 1e6, nil
	case has_min:
		return minimum, nil
	case has_max:
		return maximum, nil
	}
	return 0, nil
}
