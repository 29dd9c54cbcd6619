package random

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MVNormal draws from a multivariate normal distribution. The covariance
// is Cholesky-factorized once at construction, so building an MVNormal is
// O(n^3) but each draw is O(n^2): rebuild one whenever the covariance
// changes, not per draw.
type MVNormal struct {
	dim   int
	lower *mat.TriDense
	z     []float64
}

// NewMVNormal factorizes the covariance and returns a sampler for it. A
// covariance that is not symmetric positive definite is a configuration
// error.
func NewMVNormal(vcv mat.Symmetric) (*MVNormal, error) {
	n := vcv.Symmetric()
	var chol mat.Cholesky
	if ok := chol.Factorize(vcv); !ok {
		return nil, errors.Wrapf(ErrInvalidParameters,
			"the given %d x %d covariance matrix is not positive "+
				"definite, so it can't be Cholesky-factorized", n, n)
	}
	lower := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(lower)
	return &MVNormal{dim: n, lower: lower, z: make([]float64, n)}, nil
}

// Dim returns the dimension of the distribution.
func (d *MVNormal) Dim() int { return d.dim }

// DrawCentred fills out with one draw from the zero-mean distribution:
// L z for z a vector of independent standard normals. In deterministic
// mode out is zeroed and no state is consumed.
func (d *MVNormal) DrawCentred(g State, out []float64) error {
	if len(out) != d.dim {
		return errors.Wrapf(ErrUsage,
			"DrawCentred was given an output buffer of length %d for a "+
				"%d-dimensional distribution", len(out), d.dim)
	}
	if g.Deterministic() {
		for i := range out {
			out[i] = 0
		}
		return nil
	}
	for i := range d.z {
		d.z[i] = standardNormal(g)
	}
	for i := 0; i < d.dim; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += d.lower.At(i, j) * d.z[j]
		}
		out[i] = sum
	}
	return nil
}

// Draw fills out with one draw centered at mean. In deterministic mode the
// mean itself is returned and no state is consumed.
func (d *MVNormal) Draw(g State, mean, out []float64) error {
	if len(mean) != d.dim {
		return errors.Wrapf(ErrUsage,
			"Draw was given a mean of length %d for a %d-dimensional "+
				"distribution", len(mean), d.dim)
	}
	if err := d.DrawCentred(g, out); err != nil {
		return err
	}
	for i := range out {
		out[i] += mean[i]
	}
	return nil
}
