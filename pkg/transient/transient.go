// Package transient implements the Transient Integrator: fixed-step
// backward-Euler time stepping built on the shared Newton Driver. See
// _examples/edp1096-toy-spice/pkg/analysis/tran.go for the teacher's
// (adaptive, gmin-stepped) version of the same loop — adaptive stepping
// and gmin continuation are intentionally not carried forward here.
package transient

import (
	"github.com/arclamp/circsim/pkg/cktserr"
	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/newton"
)

// bootstrapStep is the (unreported) step size used to compute the t_begin
// sample from ICs: small enough that the backward-Euler companion models
// behave as their h→0 limit (an ideal V0 source for capacitors, an ideal
// I0 source for inductors) without needing a dedicated stamp path.
const bootstrapStep = 1e-12

// Sample is one accepted time point: the solved time and its 1-based
// solution vector (node voltages and branch currents).
type Sample struct {
	Time float64
	X    []float64
}

// Stepper drives a device.Set through fixed-step backward-Euler time
// integration, re-stamping and converging a full Newton solve at every
// step.
type Stepper struct {
	Devices *device.Set
	Size    int

	lastStep float64
	lastX    []float64 // previous accepted solution, seeds the next Newton solve (§4.5)
}

func New(devices *device.Set, size int) *Stepper {
	return &Stepper{Devices: devices, Size: size}
}

// LastStep reports the time step used for the most recent Run or Continue
// call that took at least one step; the facade's PrintEquations restamps
// the transient system with it.
func (s *Stepper) LastStep() float64 { return s.lastStep }

// Prepare loads every stateful device's initial condition (V0 for
// capacitors, I0 for inductors) ahead of a fresh run, and clears the Newton
// seed so a fresh Run starts from the all-zero guess.
func (s *Stepper) Prepare() {
	s.lastX = nil
	for _, d := range s.Devices.All() {
		if ic, ok := d.(interface{ LoadInitialConditions() }); ok {
			ic.LoadInitialConditions()
		}
	}
}

// Run is the first call of a transient run: it prepares ICs, solves the
// t_begin sample from them, and then steps to t_end if t_end > t_begin.
// The t_begin sample is always present, per §4.6's "recorded timestamps
// include t = t_begin exactly once at the start of the first call" —
// including when t_end <= t_begin, which takes no further steps.
func (s *Stepper) Run(tBegin, tEnd, timeStep float64) ([]Sample, error) {
	s.Prepare()

	x0, err := s.initialSample(tBegin)
	if err != nil {
		return nil, err
	}
	samples := []Sample{{Time: tBegin, X: x0}}

	if tEnd <= tBegin {
		return samples, nil
	}

	rest, err := s.advance(tBegin, tEnd, timeStep)
	samples = append(samples, rest...)
	return samples, err
}

// Continue extends an already-running simulation by duration, without
// reloading initial conditions or re-recording a t_begin sample — device
// history (V_prev/I_prev) carries over from wherever Run or the previous
// Continue left it.
func (s *Stepper) Continue(tNow, duration, timeStep float64) ([]Sample, error) {
	return s.advance(tNow, tNow+duration, timeStep)
}

// initialSample solves the circuit at t with every reactive element held
// at its just-loaded initial condition, using a companion-model step so
// small that V≈V_prev and I≈I_prev to within numerical noise.
func (s *Stepper) initialSample(t float64) ([]float64, error) {
	st := &device.Status{Mode: device.TransientMode, Time: t, TimeStep: bootstrapStep}
	x, _, err := newton.Run(&problem{devices: s.Devices, size: s.Size, status: st}, s.lastX, newton.DefaultOptions())
	if err != nil {
		return nil, err
	}
	s.lastX = x
	return x, nil
}

func (s *Stepper) advance(tFrom, tTo, timeStep float64) ([]Sample, error) {
	if timeStep <= 0 {
		return nil, cktserr.Wrap(cktserr.ErrTimeStepNonPositive, "time step %g", timeStep)
	}
	s.lastStep = timeStep

	var samples []Sample
	t := tFrom
	const epsT = 1e-15
	for t < tTo-epsT {
		h := timeStep
		if t+h > tTo {
			h = tTo - t
		}
		st := &device.Status{Mode: device.TransientMode, Time: t + h, TimeStep: h}

		x, _, err := newton.Run(&problem{devices: s.Devices, size: s.Size, status: st}, s.lastX, newton.DefaultOptions())
		if err != nil {
			return samples, err
		}
		s.lastX = x

		for _, d := range s.Devices.All() {
			if stv, ok := d.(device.Stateful); ok {
				stv.UpdateState(x, st)
			}
		}

		t += h
		samples = append(samples, Sample{Time: t, X: x})
	}
	return samples, nil
}

// problem adapts a device.Set to newton.Problem for one fixed time step.
type problem struct {
	devices *device.Set
	size    int
	status  *device.Status
}

func (p *problem) Size() int { return p.size }

func (p *problem) Relinearize(x []float64) error {
	for _, d := range p.devices.All() {
		if nl, ok := d.(device.NonLinear); ok {
			if err := nl.Relinearize(x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *problem) Stamp(sys matrix.System) error {
	for _, d := range p.devices.All() {
		if err := d.Stamp(sys, p.status); err != nil {
			return err
		}
	}
	return nil
}
