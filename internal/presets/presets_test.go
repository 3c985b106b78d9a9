package presets

import "testing"

func TestEmptyCube(t *testing.T) {
	s, err := EmptyCube(1000)
	if err != nil {
		t.Fatalf("EmptyCube: %v", err)
	}
	if len(s.Geometry) != s.Params.N {
		t.Errorf("geometry length %d, want %d", len(s.Geometry), s.Params.N)
	}
	for _, v := range s.Geometry {
		if v != 0 {
			t.Fatalf("expected an empty cube to have no solid cells")
		}
	}
	if len(s.Sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(s.Sources))
	}
}

func TestOpenTube(t *testing.T) {
	s, err := OpenTube(3, 2000)
	if err != nil {
		t.Fatalf("OpenTube: %v", err)
	}
	if s.Params.Width != 3 {
		t.Errorf("Width = %g, want 3", s.Params.Width)
	}
	if len(s.Sources) != 1 {
		t.Fatalf("expected 1 source")
	}
	if s.Sources[0].Position[0] != 1 {
		t.Errorf("expected the driving source near w=1, got %d", s.Sources[0].Position[0])
	}
}

func TestLivingRoom_CarvesChimneyAlcove(t *testing.T) {
	s, err := LivingRoom(1000)
	if err != nil {
		t.Fatalf("LivingRoom: %v", err)
	}
	solid := 0
	for _, v := range s.Geometry {
		if v != 0 {
			solid++
		}
	}
	if solid == 0 {
		t.Error("expected the chimney alcove to carve out some solid cells")
	}
	if len(s.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(s.Sources))
	}
	for _, src := range s.Sources {
		if src.Frequency != 600 || src.Pulses != 1 {
			t.Errorf("expected 600Hz single-pulse sources, got %+v", src)
		}
	}
}

func TestConcertHallRiser_BuildsRaisedPlatform(t *testing.T) {
	s, err := ConcertHallRiser(500)
	if err != nil {
		t.Fatalf("ConcertHallRiser: %v", err)
	}
	solid := 0
	for _, v := range s.Geometry {
		if v != 0 {
			solid++
		}
	}
	if solid == 0 {
		t.Error("expected the riser to carve out some solid cells")
	}
	if len(s.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(s.Sources))
	}
}
