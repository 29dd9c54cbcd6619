/*package adaptive implements an adaptive random-walk Metropolis-Hastings
sampler. The proposal distribution is a multivariate normal whose covariance
is learned online: a Welford-style recursion maintains the chain's running
mean and uncentered second moment, the derived empirical covariance is
blended with a fixed prior covariance, and a scalar step-scaling factor is
driven toward a target acceptance rate by a stochastic-approximation update
applied on every step. A "forgetting" window evicts the oldest retained
sample from the moment accumulators on a schedule, which bounds memory and
lets the estimate track the early, non-stationary part of the chain.

One Sampler serves exactly one chain. Chains are independent: to run many
in parallel, build one Sampler and one generator stream per chain.
*/
package adaptive

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phil-mansfield/danio/lib/random"
)

// rwmScale is 2.38^2, the optimal random-walk Metropolis proposal scaling
// constant for high-dimensional Gaussian targets (Roberts, Gelman & Gilks
// 1997). The proposal covariance is rwmScale/nPars times the blended
// covariance, times the adapted scaling factor squared.
const rwmScale = 2.38 * 2.38

// Config collects the sampler's tuning parameters. The zero value of every
// field other than InitialVCV means "use the default described on the
// field". DefaultConfig fills in the standard defaults explicitly.
type Config struct {
	// InitialVCV is the prior proposal covariance, used on its own until
	// the chain has accumulated enough history to estimate an empirical
	// one. Required, and must be symmetric positive definite.
	InitialVCV *mat.SymDense
	// InitialVCVWeight controls how slowly the empirical covariance takes
	// over from InitialVCV; it acts like a pseudo-count of prior samples.
	// Default 1000.
	InitialVCVWeight float64
	// InitialScaling is the starting value of the scalar step-scaling
	// factor. Default 1.
	InitialScaling float64
	// InitialScalingWeight damps the scaling updates from the start. If
	// zero, the closed form 5/(t(1-t)) of the acceptance target t is
	// used.
	InitialScalingWeight float64
	// MinScaling is the floor the scaling factor is clamped to after
	// every update. Default 0.
	MinScaling float64
	// ScalingIncrement is the step size of the scaling update. If zero, a
	// closed form of the acceptance target and dimension is used for
	// log-scale updates, and 0.01 for linear-scale updates.
	ScalingIncrement float64
	// LinearScalingUpdate switches the scaling update from the default
	// multiplicative (log-scale) law to an additive one.
	LinearScalingUpdate bool
	// AcceptanceTarget is the acceptance rate the scaling factor is
	// driven toward. Default 0.234.
	AcceptanceTarget float64
	// ForgetRate sets the forgetting schedule: step i evicts the oldest
	// retained sample iff floor(ForgetRate*i) > floor(ForgetRate*(i-1)).
	// Zero disables forgetting; DefaultConfig uses 0.2. Must be < 1.
	ForgetRate float64
	// ForgetEnd is the last step on which forgetting may occur. Zero
	// means no end.
	ForgetEnd int
	// AdaptEnd is the last step that adapts the covariance and scaling.
	// After it, the proposal is frozen and only plain sampling continues.
	// Zero means adaptation never stops.
	AdaptEnd int
	// PreDiminish is the number of warm-up steps before the scaling
	// weight starts growing. Until then the adaptation rate of the
	// scaling factor does not decay. Default 0.
	PreDiminish int
}

// DefaultConfig returns the standard configuration around a given prior
// covariance.
func DefaultConfig(initialVCV *mat.SymDense) Config {
	return Config{
		InitialVCV:       initialVCV,
		InitialVCVWeight: 1000,
		InitialScaling:   1,
		AcceptanceTarget: 0.234,
		ForgetRate:       0.2,
	}
}

// ChainState is the per-chain state the caller owns: the current parameter
// vector and its log-density. Step mutates it in place on acceptance.
type ChainState struct {
	Pars    []float64
	Density float64
}

// Result is the diagnostic output of Finalise: the terminal empirical
// covariance and mean, the full scaling-factor trajectory, and the number
// of samples retained by the moment accumulators.
type Result struct {
	VCV            *mat.SymDense
	Mean           []float64
	ScalingHistory []float64
	Weight         int
	Iterations     int
}

type phase int

const (
	phaseUninitialized phase = iota
	phaseRunning
	phaseFinalized
)

// Sampler is the adaptive proposal sampler for a single chain. All of its
// state lives in this one struct, so a chain can be inspected, checkpointed
// and resumed by the driver without hidden module-level state.
type Sampler struct {
	cfg   Config
	nPars int
	phase phase

	iteration int
	weight    int
	mean      []float64
	autocorr  *mat.SymDense
	vcv       *mat.SymDense

	scaling          float64
	scalingWeight    float64
	scalingIncrement float64
	scalingHistory   []float64

	// history holds the retained parameter vectors keyed by the step
	// that included them; included is the same set in inclusion order.
	// Only included[0] is ever evicted.
	history  map[int][]float64
	included []int

	frozen    *random.MVNormal
	delta     []float64
	candidate []float64
}

// New validates a configuration and returns a Sampler in its uninitialized
// phase. All configuration errors surface here, before any chain starts.
func New(cfg Config) (*Sampler, error) {
	if cfg.InitialVCV == nil {
		return nil, errors.Wrap(random.ErrInvalidParameters,
			"the adaptive sampler requires an initial covariance matrix")
	}
	n := cfg.InitialVCV.Symmetric()
	if n < 1 {
		return nil, errors.Wrap(random.ErrInvalidParameters,
			"the initial covariance matrix is empty")
	}
	// Fail on a bad prior now rather than on the first Step.
	var chol mat.Cholesky
	if ok := chol.Factorize(cfg.InitialVCV); !ok {
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"the %d x %d initial covariance matrix is not positive "+
				"definite", n, n)
	}

	if cfg.InitialVCVWeight == 0 {
		cfg.InitialVCVWeight = 1000
	}
	if cfg.InitialScaling == 0 {
		cfg.InitialScaling = 1
	}
	if cfg.AcceptanceTarget == 0 {
		cfg.AcceptanceTarget = 0.234
	}

	switch {
	case cfg.InitialVCVWeight < 0:
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"InitialVCVWeight = %g, but it must be non-negative",
			cfg.InitialVCVWeight)
	case cfg.InitialScaling < 0:
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"InitialScaling = %g, but it must be positive",
			cfg.InitialScaling)
	case cfg.MinScaling < 0:
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"MinScaling = %g, but it must be non-negative",
			cfg.MinScaling)
	case cfg.AcceptanceTarget <= 0 || cfg.AcceptanceTarget >= 1:
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"AcceptanceTarget = %g, but it must be strictly between 0 "+
				"and 1", cfg.AcceptanceTarget)
	case cfg.ForgetRate < 0 || cfg.ForgetRate >= 1:
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"ForgetRate = %g, but it must be in [0, 1): a rate of 1 or "+
				"more would evict every sample as soon as it arrived",
			cfg.ForgetRate)
	case cfg.ForgetEnd < 0 || cfg.AdaptEnd < 0 || cfg.PreDiminish < 0:
		return nil, errors.Wrap(random.ErrInvalidParameters,
			"ForgetEnd, AdaptEnd and PreDiminish must be non-negative")
	}

	if cfg.InitialScalingWeight == 0 {
		t := cfg.AcceptanceTarget
		cfg.InitialScalingWeight = 5 / (t * (1 - t))
	}
	if cfg.ScalingIncrement == 0 {
		cfg.ScalingIncrement = scalingIncrement(
			n, cfg.AcceptanceTarget, cfg.LinearScalingUpdate)
	}

	return &Sampler{cfg: cfg, nPars: n}, nil
}

// scalingIncrement is the closed-form default step size for the scaling
// update. The log-scale form follows from the stationary distribution of
// the acceptance rate around the target (the constant is built from the
// inverse normal CDF at half the target); the linear form is a flat 1/100.
func scalingIncrement(nPars int, target float64, linear bool) float64 {
	if linear {
		return 0.01
	}
	a := -distuv.UnitNormal.Quantile(target / 2)
	n := float64(nPars)
	return (1-1/n)*(math.Sqrt(2*math.Pi)*math.Exp(a*a/2))/(2*a) +
		1/(n*target*(1-target))
}

// Initialise starts the chain at the given parameter vector. It evaluates
// the model's density there and fails the chain if the starting density is
// not finite. A Sampler runs exactly one chain: initializing it a second
// time (e.g. to drive several chains at once through one Sampler) is a
// usage error.
func (s *Sampler) Initialise(pars []float64, model Model) (*ChainState, error) {
	if s.phase != phaseUninitialized {
		return nil, errors.Wrap(random.ErrUsage,
			"this sampler has already started a chain; it handles one "+
				"parameter vector for one chain, so simultaneous chains "+
				"need one sampler each")
	}
	if len(pars) != s.nPars {
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"the initial parameter vector has %d elements, but the "+
				"initial covariance is %d x %d", len(pars), s.nPars, s.nPars)
	}
	if np := len(model.Parameters()); np != s.nPars {
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"the model declares %d parameters, but the sampler was "+
				"configured for %d", np, s.nPars)
	}

	density := model.Density(pars)
	if math.IsNaN(density) || math.IsInf(density, 0) {
		return nil, errors.Wrapf(random.ErrInvalidParameters,
			"the chain can't start at density %g (parameters %v): the "+
				"starting log-density must be finite", density, pars)
	}

	s.iteration = 0
	s.weight = 0
	s.mean = append([]float64{}, pars...)
	s.autocorr = mat.NewSymDense(s.nPars, nil)
	s.vcv = mat.NewSymDense(s.nPars, nil)
	s.scaling = s.cfg.InitialScaling
	s.scalingWeight = s.cfg.InitialScalingWeight
	s.scalingIncrement = s.cfg.ScalingIncrement
	s.scalingHistory = []float64{s.scaling}
	s.history = map[int][]float64{}
	s.included = nil
	s.frozen = nil
	s.delta = make([]float64, s.nPars)
	s.candidate = make([]float64, s.nPars)
	s.phase = phaseRunning

	return &ChainState{
		Pars:    append([]float64{}, pars...),
		Density: density,
	}, nil
}

// Step advances the chain by one Metropolis step: propose a candidate from
// the current proposal distribution, accept or reject it against one
// uniform draw, then update the scaling factor and (until AdaptEnd) the
// moment accumulators. It reports whether the candidate was accepted.
func (s *Sampler) Step(state *ChainState, model Model, g random.State) (bool, error) {
	switch s.phase {
	case phaseUninitialized:
		return false, errors.Wrap(random.ErrUsage,
			"Step was called on a sampler that was never initialised")
	case phaseFinalized:
		return false, errors.Wrap(random.ErrUsage,
			"Step was called on a sampler that was already finalised")
	}
	if len(state.Pars) != s.nPars {
		return false, errors.Wrapf(random.ErrUsage,
			"Step was given a chain state with %d parameters, but the "+
				"sampler was configured for %d", len(state.Pars), s.nPars)
	}

	prop, err := s.proposal()
	if err != nil {
		return false, err
	}
	if err := prop.DrawCentred(g, s.delta); err != nil {
		return false, err
	}
	for i := range s.candidate {
		s.candidate[i] = state.Pars[i] + s.delta[i]
	}

	densityNext := model.Density(s.candidate)
	if math.IsNaN(densityNext) {
		return false, errors.Wrapf(random.ErrInvalidParameters,
			"the model returned a NaN log-density at parameters %v",
			s.candidate)
	}

	acceptProb := math.Min(1, math.Exp(densityNext-state.Density))
	accept := g.Real() < acceptProb
	if accept {
		copy(state.Pars, s.candidate)
		state.Density = densityNext
	}

	s.iteration++
	if s.cfg.AdaptEnd > 0 && s.iteration > s.cfg.AdaptEnd {
		// Past the adaptation horizon everything is frozen; only the
		// scaling trajectory keeps being recorded.
		s.scalingHistory = append(s.scalingHistory, s.scaling)
		return accept, nil
	}

	if s.iteration > s.cfg.PreDiminish {
		s.scalingWeight++
	}
	s.updateScaling(acceptProb)

	// The accumulators always see the chain's current value, so a
	// rejected step re-counts the retained point. That's the estimator
	// working as intended, not a bug.
	s.updateMoments(state.Pars)

	return accept, nil
}

// Finalise ends the chain and returns its diagnostics. It consumes no
// randomness. After Finalise the sampler can't step again.
func (s *Sampler) Finalise() (*Result, error) {
	if s.phase != phaseRunning {
		return nil, errors.Wrap(random.ErrUsage,
			"Finalise was called on a sampler with no running chain")
	}
	s.phase = phaseFinalized

	vcv := mat.NewSymDense(s.nPars, nil)
	vcv.CopySym(s.vcv)
	return &Result{
		VCV:            vcv,
		Mean:           append([]float64{}, s.mean...),
		ScalingHistory: append([]float64{}, s.scalingHistory...),
		Weight:         s.weight,
		Iterations:     s.iteration,
	}, nil
}

// Iteration returns the number of completed steps.
func (s *Sampler) Iteration() int { return s.iteration }

// Weight returns the number of samples currently retained by the moment
// accumulators.
func (s *Sampler) Weight() int { return s.weight }

// Scaling returns the current step-scaling factor.
func (s *Sampler) Scaling() float64 { return s.scaling }

// proposal returns the current proposal distribution. While adapting, the
// covariance changes every step, so the Cholesky factorization is redone
// per update; once adaptation has ended the factorization is cached.
func (s *Sampler) proposal() (*random.MVNormal, error) {
	if s.cfg.AdaptEnd > 0 && s.iteration >= s.cfg.AdaptEnd {
		if s.frozen == nil {
			prop, err := random.NewMVNormal(s.proposalVCV())
			if err != nil {
				return nil, err
			}
			s.frozen = prop
		}
		return s.frozen, nil
	}
	return random.NewMVNormal(s.proposalVCV())
}

// proposalVCV blends the prior covariance with the empirical one,
// weighting the prior like InitialVCVWeight pseudo-samples, and applies
// the optimal-scaling constant and the adapted scaling factor.
func (s *Sampler) proposalVCV() *mat.SymDense {
	n := s.nPars
	w := float64(s.weight)
	w0 := s.cfg.InitialVCVWeight
	denom := w + w0 + float64(n) + 1
	factor := rwmScale / float64(n) * s.scaling * s.scaling

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			blended := ((w-1)*s.vcv.At(i, j) +
				(w0+float64(n)+1)*s.cfg.InitialVCV.At(i, j)) / denom
			out.SetSym(i, j, factor*blended)
		}
	}
	return out
}

// updateScaling is the "accelerated shaping" control law: on every step,
// accepted or not, the scaling factor moves toward the target acceptance
// rate with a step damped by the growing scaling weight, then gets clamped
// at the configured floor.
func (s *Sampler) updateScaling(acceptProb float64) {
	change := s.scalingIncrement *
		(acceptProb - s.cfg.AcceptanceTarget) / math.Sqrt(s.scalingWeight)
	if s.cfg.LinearScalingUpdate {
		s.scaling = math.Max(s.cfg.MinScaling, s.scaling+change)
	} else {
		s.scaling = math.Max(s.cfg.MinScaling, s.scaling*math.Exp(change))
	}
	s.scalingHistory = append(s.scalingHistory, s.scaling)
}

// updateMoments feeds the chain's current parameter vector into the
// running mean and uncentered second-moment accumulators, evicting the
// oldest retained sample instead of growing the weight when the forgetting
// schedule says so, and rederives the covariance.
func (s *Sampler) updateMoments(pars []float64) {
	var parsRemove []float64
	if s.isForgetStep() && s.weight > 1 {
		oldest := s.included[0]
		parsRemove = s.history[oldest]
		delete(s.history, oldest)
		s.included = append(s.included[1:], s.iteration)
	} else {
		s.included = append(s.included, s.iteration)
		s.weight++
	}
	s.history[s.iteration] = append([]float64{}, pars...)

	w := float64(s.weight)
	if parsRemove == nil {
		if s.weight > 2 {
			scaleSym(s.autocorr, 1-1/(w-1))
			addScaledOuter(s.autocorr, 1/(w-1), pars)
		} else {
			addScaledOuter(s.autocorr, 1, pars)
		}
		for i := range s.mean {
			s.mean[i] += (pars[i] - s.mean[i]) / w
		}
	} else {
		// O(1) eviction: subtract the old sample's contribution while
		// adding the new one's. The weight doesn't change.
		addScaledOuter(s.autocorr, 1/(w-1), pars)
		addScaledOuter(s.autocorr, -1/(w-1), parsRemove)
		for i := range s.mean {
			s.mean[i] += (pars[i] - parsRemove[i]) / w
		}
	}

	// vcv = autocorrelation - w/(w-1) mean mean^T once at least two
	// samples are retained; before that there's no spread to estimate
	// and the proposal falls back to the prior covariance alone.
	if s.weight > 1 {
		for i := 0; i < s.nPars; i++ {
			for j := i; j < s.nPars; j++ {
				s.vcv.SetSym(i, j,
					s.autocorr.At(i, j)-w/(w-1)*s.mean[i]*s.mean[j])
			}
		}
	}
}

// isForgetStep implements the forgetting schedule: step i is a forget step
// iff the value floor(rate*i) ticked up at i, and i hasn't passed
// ForgetEnd. With rate 0.2 that's every 5th step. The weight > 1 guard in
// updateMoments covers the schedule firing while fewer than two samples
// are retained: the replacement update normalizes by 1/(weight - 1), so a
// single-sample eviction would divide by zero. Such a step includes the
// sample instead.
func (s *Sampler) isForgetStep() bool {
	r := s.cfg.ForgetRate
	if r == 0 {
		return false
	}
	if s.cfg.ForgetEnd > 0 && s.iteration > s.cfg.ForgetEnd {
		return false
	}
	i := float64(s.iteration)
	return math.Floor(r*i) > math.Floor(r*(i-1))
}

func scaleSym(dst *mat.SymDense, f float64) {
	n := dst.Symmetric()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst.SetSym(i, j, f*dst.At(i, j))
		}
	}
}

func addScaledOuter(dst *mat.SymDense, alpha float64, x []float64) {
	for i := 0; i < len(x); i++ {
		for j := i; j < len(x); j++ {
			dst.SetSym(i, j, dst.At(i, j)+alpha*x[i]*x[j])
		}
	}
}
