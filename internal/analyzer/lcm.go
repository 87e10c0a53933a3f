package analyzer

import "math/bits"

// LCM returns the least common multiple of values.
//
// Every value must be positive. An empty list, a value ≤ 0, or a result
// that does not fit in uint64 returns *DegenerateInputError.
func LCM(values ...int64) (uint64, error) {
	if len(values) == 0 {
		return 0, &DegenerateInputError{Index: -1, Message: "no values"}
	}

	result := uint64(1)
	for i, v := range values {
		if v <= 0 {
			return 0, &DegenerateInputError{Index: i, Value: v, Message: "must be positive"}
		}
		u := uint64(v)
		hi, lo := bits.Mul64(result/gcd(result, u), u)
		if hi != 0 {
			return 0, &DegenerateInputError{Index: i, Value: v, Message: "result overflows uint64"}
		}
		result = lo
	}
	return result, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
