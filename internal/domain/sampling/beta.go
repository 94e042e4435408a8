package sampling

import (
	"math"
	"math/rand"
)

// gammaRejectionCap bounds the Marsaglia-Tsang acceptance loop; the
// acceptance rate is above 95% for any shape >= 1, so the cap is never
// reached in practice.
const gammaRejectionCap = 1000

// sampleBeta draws from Beta(alpha, beta) as the normalized ratio of two
// Gamma draws. Callers must own rng; the function does no locking.
func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	x := sampleGamma(rng, alpha)
	y := sampleGamma(rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using the Marsaglia-Tsang
// squeeze method. Shapes below one are boosted via the standard
// Gamma(1+shape) * U^(1/shape) identity.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape <= 0 {
		return 0
	}

	if shape < 1 {
		u := rng.Float64()
		if u == 0 {
			u = 1e-10
		}
		return sampleGamma(rng, 1+shape) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for iter := 0; iter < gammaRejectionCap; iter++ {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}

		v = v * v * v
		u := rng.Float64()

		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v
		}

		if u > 0 && math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}

	return shape
}
