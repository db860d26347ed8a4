package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/tailrisk/random"
)

// MonteCarlo fits a normal distribution to returns, draws nSims scenarios
// from N(mu*h, sigma*sqrt(h)) using rng, and returns the magnitude of the
// (1-confidence) percentile of the simulated sample.
func MonteCarlo(rng *random.Engine, returns []float64, confidence, holdingPeriod float64, nSims int) (Estimate, error) {
	if err := CheckConfidence(confidence); err != nil {
		return Estimate{}, err
	}
	if err := checkHoldingPeriod(holdingPeriod); err != nil {
		return Estimate{}, err
	}
	if err := CheckSimulations(nSims); err != nil {
		return Estimate{}, err
	}
	if rng == nil {
		return Estimate{}, fmt.Errorf("%w: monte carlo VaR needs a random engine", ErrDomain)
	}
	mu, sigma, err := FitNormal(returns)
	if err != nil {
		return Estimate{}, fmt.Errorf("monte carlo VaR: %w", err)
	}

	sims := make([]float64, nSims)
	if sigma == 0 {
		// degenerate fit; distuv requires Sigma > 0 for a proper draw
		for i := range sims {
			sims[i] = mu * holdingPeriod
		}
	} else {
		dist := distuv.Normal{
			Mu:    mu * holdingPeriod,
			Sigma: sigma * math.Sqrt(holdingPeriod),
			Src:   rng.Source(),
		}
		for i := range sims {
			sims[i] = dist.Rand()
		}
	}

	v := math.Abs(Percentile(sims, 1-confidence))

	return defined(v, sampleWarnings(min(len(returns), nSims), confidence)...), nil
}

// MonteCarloEstimator binds MonteCarlo to fixed parameters. Successive
// calls continue the same random stream.
type MonteCarloEstimator struct {
	Confidence    float64
	HoldingPeriod float64
	NSims         int
	Rand          *random.Engine
}

func (m *MonteCarloEstimator) Estimate(returns []float64) (Estimate, error) {
	return MonteCarlo(m.Rand, returns, m.Confidence, m.HoldingPeriod, m.NSims)
}
