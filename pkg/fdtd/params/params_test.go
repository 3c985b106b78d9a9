package params

import (
	"errors"
	"math"
	"testing"
)

func TestDerive_Cube1mAt1000Hz(t *testing.T) {
	p, err := Derive(1, 1, 1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if p.W != 47 || p.H != 47 || p.D != 47 {
		t.Errorf("expected 47^3 grid, got %dx%dx%d", p.W, p.H, p.D)
	}
	wantDx := 0.02145
	if math.Abs(p.Dx-wantDx) > 1e-4 {
		t.Errorf("dx = %g, want ~%g", p.Dx, wantDx)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	a, err := Derive(2, 0.5, 0.5, 500, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive(2, 0.5, 0.5, 500, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if a != b {
		t.Errorf("Derive is not deterministic: %+v != %+v", a, b)
	}
}

func TestDerive_CompactCoefficientsDefault(t *testing.T) {
	p, err := Derive(1, 1, 1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if p.D1 != p.LambdaSquared {
		t.Errorf("d1 = %g, want lambda^2 = %g", p.D1, p.LambdaSquared)
	}
	if p.D2 != 0 || p.D3 != 0 {
		t.Errorf("d2,d3 should be 0 when a=b=0, got %g,%g", p.D2, p.D3)
	}
	wantD4 := 2 * (1 - 3*p.LambdaSquared)
	if math.Abs(p.D4-wantD4) > 1e-12 {
		t.Errorf("d4 = %g, want %g", p.D4, wantD4)
	}
}

func TestDerive_CourantNumber(t *testing.T) {
	p, err := Derive(1, 1, 1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want := 1 / math.Sqrt(3)
	if math.Abs(p.Lambda-want) > 1e-12 {
		t.Errorf("lambda = %g, want 1/sqrt(3) = %g", p.Lambda, want)
	}
}

func TestDerive_RejectsNonPositive(t *testing.T) {
	cases := []struct {
		name                                      string
		w, h, d, maxFreq, airDampening, a, b float64
	}{
		{"zero width", 0, 1, 1, 1000, 1, 0, 0},
		{"negative height", 1, -1, 1, 1000, 1, 0, 0},
		{"zero max_frequency", 1, 1, 1, 0, 1, 0, 0},
		{"negative max_frequency", 1, 1, 1, -1000, 1, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Derive(c.w, c.h, c.d, c.maxFreq, c.airDampening, c.a, c.b)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestDerive_RejectsLowMaxFrequency(t *testing.T) {
	// A 10cm room needs a much higher max_frequency than 20Hz to resolve
	// one cell per half-wavelength.
	_, err := Derive(0.1, 0.1, 0.1, 20, 1.0, 0, 0)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for too-low max_frequency, got %v", err)
	}
}

func TestDerive_AirDampeningDefaultsToOne(t *testing.T) {
	p, err := Derive(1, 1, 1, 1000, 0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if p.AirDampening != 1.0 {
		t.Errorf("expected default air_dampening of 1.0, got %g", p.AirDampening)
	}
}

func TestDerive_RejectsAirDampeningOutOfRange(t *testing.T) {
	_, err := Derive(1, 1, 1, 1000, 1.5, 0, 0)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for air_dampening > 1, got %v", err)
	}
}

func TestScale(t *testing.T) {
	p, err := Derive(7.1, 2.5, 4.1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	got := p.Scale(1.1)
	want := int(math.Floor(1.1 / p.Dx))
	if got != want {
		t.Errorf("Scale(1.1) = %d, want %d", got, want)
	}
}

func TestIndex_RowMajor(t *testing.T) {
	p, err := Derive(1, 1, 1, 1000, 1.0, 0, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if p.Index(0, 0, 0) != 0 {
		t.Errorf("Index(0,0,0) = %d, want 0", p.Index(0, 0, 0))
	}
	if p.Index(1, 0, 0) != 1 {
		t.Errorf("Index(1,0,0) = %d, want 1", p.Index(1, 0, 0))
	}
	if p.Index(0, 1, 0) != p.W {
		t.Errorf("Index(0,1,0) = %d, want %d", p.Index(0, 1, 0), p.W)
	}
	if p.Index(0, 0, 1) != p.W*p.H {
		t.Errorf("Index(0,0,1) = %d, want %d", p.Index(0, 0, 1), p.W*p.H)
	}
}
