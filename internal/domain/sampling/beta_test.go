package sampling

import (
	"math/rand"
	"testing"
)

func TestSampleBetaBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	params := [][2]float64{
		{1, 1}, {0.5, 0.5}, {2, 8}, {8, 2}, {31, 1}, {1, 31}, {16, 16},
	}

	for _, p := range params {
		for i := 0; i < 2000; i++ {
			v := sampleBeta(rng, p[0], p[1])
			if v < 0 || v > 1 {
				t.Fatalf("sampleBeta(%g, %g) = %g out of [0,1]", p[0], p[1], v)
			}
		}
	}
}

func TestSampleBetaMeanConvergence(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	cases := []struct {
		alpha, beta float64
		want        float64
	}{
		{1, 1, 0.5},
		{8, 2, 0.8},
		{2, 8, 0.2},
		{30, 10, 0.75},
	}

	const draws = 20000
	for _, c := range cases {
		var sum float64
		for i := 0; i < draws; i++ {
			sum += sampleBeta(rng, c.alpha, c.beta)
		}
		mean := sum / draws
		if diff := mean - c.want; diff > 0.02 || diff < -0.02 {
			t.Errorf("Beta(%g,%g) empirical mean %.4f, want %.4f +/- 0.02", c.alpha, c.beta, mean, c.want)
		}
	}
}

func TestSampleBetaDegenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	if got := sampleBeta(rng, 0, 0); got != 0.5 {
		t.Errorf("sampleBeta(0,0) = %g, want the 0.5 fallback", got)
	}
}

func TestSampleGamma(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	if got := sampleGamma(rng, 0); got != 0 {
		t.Errorf("sampleGamma(0) = %g, want 0", got)
	}
	if got := sampleGamma(rng, -3); got != 0 {
		t.Errorf("sampleGamma(-3) = %g, want 0", got)
	}

	// The boost path for sub-one shapes must still yield positive draws.
	for i := 0; i < 1000; i++ {
		if v := sampleGamma(rng, 0.3); v <= 0 {
			t.Fatalf("sampleGamma(0.3) = %g, want positive", v)
		}
	}

	// Gamma(k,1) has mean k.
	const draws = 20000
	var sum float64
	for i := 0; i < draws; i++ {
		sum += sampleGamma(rng, 4)
	}
	mean := sum / draws
	if mean < 3.8 || mean > 4.2 {
		t.Errorf("Gamma(4) empirical mean %.4f, want 4 +/- 0.2", mean)
	}
}
