package validate

import "math"

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Promedio is the plain mean of two partial scores, rounded to two
// decimals.
func Promedio(p1, p2 float64) float64 {
	return round2((p1 + p2) / 2)
}

// PromedioPonderado weighs three partial scores 30/30/40, rounded to two
// decimals.
func PromedioPonderado(p1, p2, p3 float64) float64 {
	return round2(0.3*p1 + 0.3*p2 + 0.4*p3)
}

// PromedioDe picks the formula by arity: two partials take the plain
// mean, a present third partial switches to the 30/30/40 weighting.
func PromedioDe(p1, p2 float64, p3 *float64) float64 {
	if p3 != nil {
		return PromedioPonderado(p1, p2, *p3)
	}
	return Promedio(p1, p2)
}
