package render

import (
	"math"
	"strconv"
	"strings"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Ticks returns roughly count nicely rounded values covering [start, stop],
// using the step sizes 1, 2 and 5 times a power of ten.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	lo, hi := start, stop
	if reverse {
		lo, hi = stop, start
	}
	i1, i2, inc := tickRange(lo, hi, float64(count))
	if i2 < i1 {
		return nil
	}

	n := int(i2-i1) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		k := i1 + float64(i)
		if reverse {
			k = i2 - float64(i)
		}
		if inc < 0 {
			ticks[i] = k / -inc
		} else {
			ticks[i] = k * inc
		}
	}
	return ticks
}

// TickStep is the distance between consecutive values returned by Ticks.
func TickStep(start, stop float64, count int) float64 {
	if count <= 0 || start == stop {
		return 0
	}
	lo, hi := math.Min(start, stop), math.Max(start, stop)
	_, _, inc := tickRange(lo, hi, float64(count))
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}

// tickRange returns the first and last tick index and the increment. A
// negative increment is the reciprocal of the step, which keeps small steps
// exact.
func tickRange(start, stop, count float64) (float64, float64, float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	var i1, i2, inc float64
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = jsRound(start * inc)
		i2 = jsRound(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = jsRound(start / inc)
		i2 = jsRound(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickRange(start, stop, count*2)
	}
	return i1, i2, inc
}

// jsRound rounds half up, which is what tick indices expect on negative
// bounds.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}

// FormatTick formats a tick value with as many decimals as the step needs
// and a typographic minus sign.
func FormatTick(v, step float64) string {
	precision := 0
	if step > 0 && step < 1 {
		precision = int(math.Max(0, -math.Floor(math.Log10(step))))
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	s := strconv.FormatFloat(v, 'f', precision, 64)
	return strings.Replace(s, "-", "−", 1)
}
