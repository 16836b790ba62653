package train

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/engine"
)

// SGD is stochastic gradient descent with optional momentum and weight decay.
// It updates the float32 master copy of each parameter; forward-pass casts to
// half precision happen elsewhere.
type SGD struct {
	params   []*engine.Parameter
	lr       float32
	momentum float32
	decay    float32
	velocity [][]float32
}

// NewSGD creates an SGD optimizer over params.
//
// Arguments:
// - params: Parameters to update.
// - lr: Learning rate; must be positive.
// - momentum: Momentum coefficient; 0 disables momentum.
// - decay: L2 weight decay coefficient; 0 disables decay.
//
// Returns:
// - *SGD: The optimizer.
// - error: An error if lr is not positive.
func NewSGD(params []*engine.Parameter, lr, momentum, decay float32) (*SGD, error) {
	if lr <= 0 {
		return nil, errors.Errorf("train: learning rate must be positive, got %g", lr)
	}
	velocity := make([][]float32, len(params))
	for i, p := range params {
		velocity[i] = make([]float32, len(p.Grad))
	}
	return &SGD{params: params, lr: lr, momentum: momentum, decay: decay, velocity: velocity}, nil
}

// Step applies one update: param -= lr * (grad + decay*param), with momentum
// folded in when configured. Extra arguments are ignored; SGD has no
// backend-specific knobs.
func (o *SGD) Step(args ...any) (any, error) {
	for i, p := range o.params {
		data := p.Value.Float32Data()
		if data == nil {
			return nil, errors.Errorf("train: parameter %s master copy is %s, want float32", p.Name, p.Value.DType())
		}
		vel := o.velocity[i]
		for j := range data {
			g := p.Grad[j] + o.decay*data[j]
			if o.momentum != 0 {
				vel[j] = o.momentum*vel[j] + g
				g = vel[j]
			}
			data[j] -= o.lr * g
		}
	}
	return nil, nil
}

// ZeroGrad clears all gradient buffers.
func (o *SGD) ZeroGrad() {
	for _, p := range o.params {
		p.ZeroGrad()
	}
}

// Parameters exposes the parameter set for gradient inspection.
func (o *SGD) Parameters() []*engine.Parameter { return o.params }

// Adam implements the Adam update with bias correction.
type Adam struct {
	params  []*engine.Parameter
	lr      float32
	beta1   float32
	beta2   float32
	epsilon float32
	step    int
	m       [][]float32
	v       [][]float32
}

// NewAdam creates an Adam optimizer with the usual defaults when the betas
// or epsilon are zero (0.9, 0.999, 1e-8).
func NewAdam(params []*engine.Parameter, lr, beta1, beta2, epsilon float32) (*Adam, error) {
	if lr <= 0 {
		return nil, errors.Errorf("train: learning rate must be positive, got %g", lr)
	}
	if beta1 == 0 {
		beta1 = 0.9
	}
	if beta2 == 0 {
		beta2 = 0.999
	}
	if epsilon == 0 {
		epsilon = 1e-8
	}
	m := make([][]float32, len(params))
	v := make([][]float32, len(params))
	for i, p := range params {
		m[i] = make([]float32, len(p.Grad))
		v[i] = make([]float32, len(p.Grad))
	}
	return &Adam{params: params, lr: lr, beta1: beta1, beta2: beta2, epsilon: epsilon, m: m, v: v}, nil
}

// Step applies one Adam update. Extra arguments are ignored.
func (o *Adam) Step(args ...any) (any, error) {
	o.step++
	c1 := 1 - math32.Pow(o.beta1, float32(o.step))
	c2 := 1 - math32.Pow(o.beta2, float32(o.step))
	for i, p := range o.params {
		data := p.Value.Float32Data()
		if data == nil {
			return nil, errors.Errorf("train: parameter %s master copy is %s, want float32", p.Name, p.Value.DType())
		}
		for j := range data {
			g := p.Grad[j]
			o.m[i][j] = o.beta1*o.m[i][j] + (1-o.beta1)*g
			o.v[i][j] = o.beta2*o.v[i][j] + (1-o.beta2)*g*g
			mHat := o.m[i][j] / c1
			vHat := o.v[i][j] / c2
			data[j] -= o.lr * mHat / (math32.Sqrt(vHat) + o.epsilon)
		}
	}
	return nil, nil
}

// ZeroGrad clears all gradient buffers.
func (o *Adam) ZeroGrad() {
	for _, p := range o.params {
		p.ZeroGrad()
	}
}

// Parameters exposes the parameter set for gradient inspection.
func (o *Adam) Parameters() []*engine.Parameter { return o.params }
