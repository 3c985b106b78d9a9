package source

import (
	"math"
	"testing"

	"github.com/gekko3d/fdtd-core/pkg/fdtd/grid"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
)

func mustParams(t *testing.T) params.Params {
	t.Helper()
	p, err := params.Derive(1, 1, 1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return p
}

func TestSignal_GaussianPulsePeaksAtStart(t *testing.T) {
	s := Source{Frequency: 440, Pulses: 1, StartAt: 0.01}
	peak := s.Signal(s.StartAt)
	for _, dt := range []float64{-0.01, -0.005, 0.005, 0.01} {
		if v := s.Signal(s.StartAt + dt); math.Abs(v) > math.Abs(peak) {
			t.Errorf("Signal(StartAt+%g) = %g exceeds peak %g", dt, v, peak)
		}
	}
}

func TestSignal_GaussianPulseDefaultSigma(t *testing.T) {
	withZero := Source{Frequency: 440, Pulses: 1}
	withDefault := Source{Frequency: 440, Pulses: 1, Sigma: DefaultSigma}
	if withZero.Signal(0.001) != withDefault.Signal(0.001) {
		t.Errorf("zero Sigma should behave identically to explicit DefaultSigma")
	}
}

func TestSignal_UnboundedSinusoidActiveForever(t *testing.T) {
	s := Source{Frequency: 100, Pulses: 0, StartAt: 0}
	if !s.Active(1000) {
		t.Error("unbounded source (Pulses==0) should remain active arbitrarily far from StartAt")
	}
	if s.Active(-0.001) {
		t.Error("source should not be active before StartAt")
	}
}

// TestSignal_GatedBurst exercises scenario 5 from the end-to-end testable
// properties: frequency=440Hz, pulses=10 — the injected signal must be zero
// outside [StartAt, StartAt + 10/440] and a plain sinusoid inside.
func TestSignal_GatedBurst(t *testing.T) {
	s := Source{Frequency: 440, Pulses: 10, StartAt: 0}
	duration := 10.0 / 440.0

	if v := s.Signal(-0.001); v != 0 {
		t.Errorf("expected 0 before StartAt, got %g", v)
	}
	if v := s.Signal(duration + 0.001); v != 0 {
		t.Errorf("expected 0 after gate closes, got %g", v)
	}

	mid := duration / 2
	got := s.Signal(mid)
	want := math.Sin(2 * math.Pi * s.Frequency * mid)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Signal(mid) = %g, want %g", got, want)
	}
}

func TestSignal_InvertPhase(t *testing.T) {
	base := Source{Frequency: 200, Pulses: 0, StartAt: 0}
	inverted := Source{Frequency: 200, Pulses: 0, StartAt: 0, InvertPhase: true}
	if base.Signal(0.001) != -inverted.Signal(0.001) {
		t.Errorf("InvertPhase should negate the signal")
	}
}

func TestInject_Additive(t *testing.T) {
	p := mustParams(t)
	g := grid.New(p, grid.Options{})
	pos := [3]int{p.W / 2, p.H / 2, p.D / 2}
	i := p.Index(pos[0], pos[1], pos[2])
	g.Pressure[i] = 5.0

	srcs := []Source{{Position: pos, Frequency: 100, Pulses: 0, StartAt: 0}}
	Inject(g, p, srcs, 0.001)

	want := 5.0 + srcs[0].Signal(0.001)
	if math.Abs(g.Pressure[i]-want) > 1e-12 {
		t.Errorf("Pressure[i] = %g, want %g (additive injection)", g.Pressure[i], want)
	}
}

func TestInject_MultipleSourcesSuperpose(t *testing.T) {
	p := mustParams(t)
	g := grid.New(p, grid.Options{})
	pos := [3]int{1, 1, 1}
	i := p.Index(pos[0], pos[1], pos[2])

	srcs := []Source{
		{Position: pos, Frequency: 100, Pulses: 0, StartAt: 0},
		{Position: pos, Frequency: 200, Pulses: 0, StartAt: 0},
	}
	Inject(g, p, srcs, 0.002)

	want := srcs[0].Signal(0.002) + srcs[1].Signal(0.002)
	if math.Abs(g.Pressure[i]-want) > 1e-12 {
		t.Errorf("Pressure[i] = %g, want %g (superposed)", g.Pressure[i], want)
	}
}

func TestIsSourcePosition(t *testing.T) {
	srcs := []Source{{Position: [3]int{2, 3, 4}}}
	if !IsSourcePosition(srcs, 2, 3, 4) {
		t.Error("expected (2,3,4) to be a source position")
	}
	if IsSourcePosition(srcs, 0, 0, 0) {
		t.Error("did not expect (0,0,0) to be a source position")
	}
}
