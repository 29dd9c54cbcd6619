package adaptive

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/danio/lib/eq"
	"github.com/phil-mansfield/danio/lib/random"
)

// gaussianModel is an independent multivariate standard normal target.
type gaussianModel struct {
	names []string
}

func newGaussianModel(n int) *gaussianModel {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	return &gaussianModel{names}
}

func (m *gaussianModel) Parameters() []string { return m.names }

func (m *gaussianModel) Density(pars []float64) float64 {
	sum := 0.0
	for _, x := range pars {
		sum += x * x
	}
	return -0.5 * sum
}

// flatModel accepts everything: constant density.
type flatModel struct{ n int }

func (m *flatModel) Parameters() []string { return make([]string, m.n) }
func (m *flatModel) Density([]float64) float64 { return 0 }

// wellModel is feasible only at the origin, so every proposal is rejected.
type wellModel struct{ n int }

func (m *wellModel) Parameters() []string { return make([]string, m.n) }
func (m *wellModel) Density(pars []float64) float64 {
	for _, x := range pars {
		if x != 0 {
			return math.Inf(-1)
		}
	}
	return 0
}

func identityVCV(n int, scale float64) *mat.SymDense {
	vcv := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		vcv.SetSym(i, i, scale)
	}
	return vcv
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil vcv", Config{}},
		{"singular vcv",
			Config{InitialVCV: mat.NewSymDense(2, []float64{1, 2, 2, 4})}},
		{"acceptance target too large",
			Config{InitialVCV: identityVCV(2, 1), AcceptanceTarget: 1.5}},
		{"forget rate of 1",
			Config{InitialVCV: identityVCV(2, 1), ForgetRate: 1}},
		{"negative min scaling",
			Config{InitialVCV: identityVCV(2, 1), MinScaling: -1}},
		{"negative adapt end",
			Config{InitialVCV: identityVCV(2, 1), AdaptEnd: -5}},
	}

	for i := range tests {
		if _, err := New(tests[i].cfg); err == nil {
			t.Errorf("%d) New() accepted a config with %s.",
				i, tests[i].name)
		} else if !errors.Is(err, random.ErrInvalidParameters) {
			t.Errorf("%d) New() gave a %v error for %s, expected invalid "+
				"parameters.", i, err, tests[i].name)
		}
	}

	if _, err := New(DefaultConfig(identityVCV(3, 1))); err != nil {
		t.Errorf("New() rejected the default config: %v", err)
	}
}

func TestLifecycleErrors(t *testing.T) {
	model := newGaussianModel(2)
	g := random.NewState(random.DefaultAlgorithm, 1)

	s, err := New(DefaultConfig(identityVCV(2, 1)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := s.Step(&ChainState{}, model, g); !errors.Is(err, random.ErrUsage) {
		t.Errorf("Step() before Initialise() gave %v, expected a usage "+
			"error.", err)
	}
	if _, err := s.Finalise(); !errors.Is(err, random.ErrUsage) {
		t.Errorf("Finalise() before Initialise() gave %v, expected a "+
			"usage error.", err)
	}

	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	// One sampler handles one chain: a second chain through the same
	// sampler must be rejected, not silently interleaved.
	if _, err := s.Initialise([]float64{1, 1}, model); !errors.Is(err, random.ErrUsage) {
		t.Errorf("a second Initialise() gave %v, expected a usage error.",
			err)
	}

	if _, err := s.Step(state, model, g); err != nil {
		t.Errorf("Step() failed: %v", err)
	}
	if _, err := s.Finalise(); err != nil {
		t.Errorf("Finalise() failed: %v", err)
	}
	if _, err := s.Step(state, model, g); !errors.Is(err, random.ErrUsage) {
		t.Errorf("Step() after Finalise() gave %v, expected a usage "+
			"error.", err)
	}
	if _, err := s.Finalise(); !errors.Is(err, random.ErrUsage) {
		t.Errorf("a second Finalise() gave %v, expected a usage error.",
			err)
	}
}

func TestInitialiseRejectsBadStart(t *testing.T) {
	s, err := New(DefaultConfig(identityVCV(2, 1)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Starting in an infeasible region is a hard chain-start failure.
	if _, err := s.Initialise([]float64{1, 1}, &wellModel{n: 2}); err == nil {
		t.Errorf("Initialise() accepted a -Inf starting density.")
	}

	s2, _ := New(DefaultConfig(identityVCV(2, 1)))
	if _, err := s2.Initialise([]float64{0, 0, 0}, newGaussianModel(2)); err == nil {
		t.Errorf("Initialise() accepted a parameter vector of the wrong " +
			"length.")
	}

	s3, _ := New(DefaultConfig(identityVCV(2, 1)))
	if _, err := s3.Initialise([]float64{0, 0}, newGaussianModel(3)); err == nil {
		t.Errorf("Initialise() accepted a model with the wrong number " +
			"of parameters.")
	}
}

func TestStepRejectsWrongLengthState(t *testing.T) {
	// A caller-built chain state with the wrong parameter count is a bug
	// in the calling code and must surface as a usage error, not a panic.
	model := newGaussianModel(2)
	g := random.NewState(random.DefaultAlgorithm, 3)
	s, err := New(DefaultConfig(identityVCV(2, 1)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := s.Initialise([]float64{0, 0}, model); err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	bad := &ChainState{Pars: []float64{0}, Density: 0}
	if _, err := s.Step(bad, model, g); !errors.Is(err, random.ErrUsage) {
		t.Errorf("Step() with a 1-parameter state on a 2-parameter "+
			"sampler gave %v, expected a usage error.", err)
	}
}

func TestFirstStepMoments(t *testing.T) {
	// After one accepted, non-forgetting step the running mean is
	// exactly the accepted parameter vector, and the covariance stays
	// zero until at least two samples are retained.
	cfg := DefaultConfig(identityVCV(2, 1))
	cfg.ForgetRate = 0
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := &flatModel{n: 2}
	g := random.NewState(random.DefaultAlgorithm, 8)
	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	accepted, err := s.Step(state, model, g)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if !accepted {
		t.Fatalf("a flat target rejected a proposal.")
	}
	if s.Weight() != 1 {
		t.Errorf("after one step the weight is %d, expected 1.", s.Weight())
	}
	if !eq.Float64s(s.mean, state.Pars) {
		t.Errorf("after one accepted step the mean is %v, but the chain "+
			"is at %v; they must be exactly equal.", s.mean, state.Pars)
	}
	if !eq.Float64s([]float64{s.vcv.At(0, 0), s.vcv.At(0, 1), s.vcv.At(1, 1)},
		[]float64{0, 0, 0}) {
		t.Errorf("the covariance is nonzero with only one retained "+
			"sample: %v", s.vcv)
	}

	if _, err := s.Step(state, model, g); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if s.Weight() != 2 {
		t.Errorf("after two steps the weight is %d, expected 2.",
			s.Weight())
	}
}

func TestMinScalingClamp(t *testing.T) {
	// Force 1000 consecutive rejections; the scaling factor must decay
	// to the floor and never pass it.
	cfg := DefaultConfig(identityVCV(2, 1))
	cfg.MinScaling = 0.5
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := &wellModel{n: 2}
	g := random.NewState(random.DefaultAlgorithm, 13)
	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	for i := 0; i < 1000; i++ {
		accepted, err := s.Step(state, model, g)
		if err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
		if accepted {
			t.Fatalf("the well target accepted a proposal on step %d.", i)
		}
		if s.Scaling() < cfg.MinScaling {
			t.Fatalf("after step %d the scaling is %g, below the "+
				"configured floor %g.", i, s.Scaling(), cfg.MinScaling)
		}
	}
	if s.Scaling() != cfg.MinScaling {
		t.Errorf("after 1000 rejections the scaling is %g, expected it "+
			"to be pinned at the floor %g.", s.Scaling(), cfg.MinScaling)
	}

	res, err := s.Finalise()
	if err != nil {
		t.Fatalf("Finalise() failed: %v", err)
	}
	for i, x := range res.ScalingHistory {
		if x < cfg.MinScaling {
			t.Errorf("scaling history entry %d is %g, below the floor.",
				i, x)
			break
		}
	}
}

func TestForgettingBoundsWeight(t *testing.T) {
	// With rate 0.5 every second step evicts instead of growing. The
	// schedule first fires on step 2, when only one sample is retained
	// and eviction is impossible, so that step includes; the other 49
	// even steps evict.
	cfg := DefaultConfig(identityVCV(2, 1))
	cfg.ForgetRate = 0.5
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := &flatModel{n: 2}
	g := random.NewState(random.DefaultAlgorithm, 5)
	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		if _, err := s.Step(state, model, g); err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
	}
	if s.Weight() != 51 {
		t.Errorf("after 100 steps at forget rate 0.5 the weight is %d, "+
			"expected 51.", s.Weight())
	}
	if len(s.included) != s.Weight() || len(s.history) != s.Weight() {
		t.Errorf("the retained history holds %d indices and %d vectors, "+
			"but the weight is %d.", len(s.included), len(s.history),
			s.Weight())
	}
}

func TestForgetEnd(t *testing.T) {
	cfg := DefaultConfig(identityVCV(2, 1))
	cfg.ForgetRate = 0.5
	cfg.ForgetEnd = 10
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := &flatModel{n: 2}
	g := random.NewState(random.DefaultAlgorithm, 5)
	state, _ := s.Initialise([]float64{0, 0}, model)
	for i := 0; i < 100; i++ {
		if _, err := s.Step(state, model, g); err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
	}
	// The schedule fires on steps 2, 4, 6, 8, 10 and then stops. Step 2
	// has only one retained sample, so only the last four steps evict.
	if s.Weight() != 96 {
		t.Errorf("after 100 steps with ForgetEnd = 10 the weight is %d, "+
			"expected 96.", s.Weight())
	}
}

func TestEarlyForgetStepKeepsMomentsFinite(t *testing.T) {
	// At forget rate 0.5 the schedule's first firing, on step 2, arrives
	// while only one sample is retained. Evicting it would normalize the
	// autocorrelation update by 1/(weight-1) = 1/0 and poison every later
	// covariance, so that step must include instead, and every moment
	// must stay finite from the start of the chain.
	cfg := DefaultConfig(identityVCV(2, 1))
	cfg.ForgetRate = 0.5
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := &flatModel{n: 2}
	g := random.NewState(random.DefaultAlgorithm, 29)
	state, err := s.Initialise([]float64{1, -1}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		if _, err := s.Step(state, model, g); err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
		for j := 0; j < 2; j++ {
			for k := j; k < 2; k++ {
				x := s.vcv.At(j, k)
				if math.IsNaN(x) || math.IsInf(x, 0) {
					t.Fatalf("after step %d the covariance entry (%d, %d) "+
						"is %g.", i, j, k, x)
				}
			}
		}
	}
}

func TestAdaptEndFreezes(t *testing.T) {
	cfg := DefaultConfig(identityVCV(2, 0.1))
	cfg.AdaptEnd = 50
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := newGaussianModel(2)
	g := random.NewState(random.DefaultAlgorithm, 17)
	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	for i := 0; i < 200; i++ {
		if _, err := s.Step(state, model, g); err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
	}

	frozenScaling := s.Scaling()
	frozenWeight := s.Weight()
	res, err := s.Finalise()
	if err != nil {
		t.Fatalf("Finalise() failed: %v", err)
	}
	// ScalingHistory holds the initial value plus one entry per step.
	if len(res.ScalingHistory) != 201 {
		t.Fatalf("the scaling history has %d entries after 200 steps, "+
			"expected 201.", len(res.ScalingHistory))
	}
	for i := 51; i <= 200; i++ {
		if res.ScalingHistory[i] != frozenScaling {
			t.Errorf("the scaling changed on step %d, after the "+
				"adaptation horizon.", i)
			break
		}
	}
	if frozenWeight > 50 {
		t.Errorf("the weight kept growing past the adaptation horizon: "+
			"%d.", frozenWeight)
	}
}

func TestTwoDimensionalGaussianEndToEnd(t *testing.T) {
	// The headline behavior: starting from a proposal covariance 100x
	// too small, 20k adaptive steps against a 2D unit Gaussian must
	// recover the target covariance and settle near the configured
	// acceptance rate.
	if testing.Short() {
		t.Skip("skipping the 20k-iteration chain in short mode")
	}

	cfg := DefaultConfig(identityVCV(2, 0.01))
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	model := newGaussianModel(2)
	g := random.NewState(random.DefaultAlgorithm, 42)
	state, err := s.Initialise([]float64{0, 0}, model)
	if err != nil {
		t.Fatalf("Initialise() failed: %v", err)
	}

	nSteps, nBurn := 20000, 5000
	accepts := 0
	samples := mat.NewDense(nSteps-nBurn, 2, nil)
	for i := 0; i < nSteps; i++ {
		accepted, err := s.Step(state, model, g)
		if err != nil {
			t.Fatalf("Step() %d failed: %v", i, err)
		}
		if i >= nBurn {
			if accepted {
				accepts++
			}
			samples.SetRow(i-nBurn, state.Pars)
		}
	}

	rate := float64(accepts) / float64(nSteps-nBurn)
	assert.InDelta(t, 0.234, rate, 0.05,
		"acceptance rate after adaptation")

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, samples, nil)
	assert.InEpsilon(t, 1, cov.At(0, 0), 0.1, "chain cov[0,0]")
	assert.InEpsilon(t, 1, cov.At(1, 1), 0.1, "chain cov[1,1]")
	assert.InDelta(t, 0, cov.At(0, 1), 0.1, "chain cov[0,1]")

	res, err := s.Finalise()
	if err != nil {
		t.Fatalf("Finalise() failed: %v", err)
	}
	assert.InDelta(t, 0, res.Mean[0], 0.1, "sampler mean[0]")
	assert.InDelta(t, 0, res.Mean[1], 0.1, "sampler mean[1]")
	assert.InEpsilon(t, 1, res.VCV.At(0, 0), 0.25, "sampler vcv[0,0]")
	assert.InEpsilon(t, 1, res.VCV.At(1, 1), 0.25, "sampler vcv[1,1]")
}
