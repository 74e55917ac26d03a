package jointcfg

import (
	"errors"
	"testing"

	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

func newJoint(t *testing.T) (*scene.Scene, scene.Handle) {
	t.Helper()
	s := scene.New()
	h, err := s.CreateNode(scene.KindJoint, "joint")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return s, h
}

func TestReadAbsent(t *testing.T) {
	s, h := newJoint(t)
	_, ok, err := Read(s, h)
	if err != nil || ok {
		t.Fatalf("Read on bare joint = ok %v err %v, want absent", ok, err)
	}
}

func TestDefaultsRoundTrip(t *testing.T) {
	s, h := newJoint(t)
	if err := SetDefaults(s, h); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}
	got, ok, err := Read(s, h)
	if err != nil || !ok {
		t.Fatalf("Read: ok %v err %v", ok, err)
	}
	want := Config{
		AimAxis:        AxisPosX,
		UpAxis:         AxisPosY,
		WorldUpAxis:    AxisPosY,
		AimAt:          AimLocalParent,
		AimUpAt:        UpWorld,
		TriangleTop:    AnchorParent,
		TriangleMid:    AnchorSelf,
		TriangleBottom: AnchorChild,
		Active:         true,
	}
	if got != want {
		t.Fatalf("Read = %+v, want %+v", got, want)
	}
}

func TestWriteCustom(t *testing.T) {
	s, h := newJoint(t)
	cfg := Default()
	cfg.AimAxis = AxisNegZ
	cfg.UpAxis = AxisZero
	cfg.AimAt = AimChild
	cfg.AimUpAt = UpTrianglePlane
	cfg.TriangleTop = AnchorGrandparent
	cfg.TriangleBottom = AnchorGrandchild
	cfg.Active = false
	if err := Write(s, h, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _, err := Read(s, h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != cfg {
		t.Fatalf("Read = %+v, want %+v", got, cfg)
	}
}

func TestReadRejectsOutOfRange(t *testing.T) {
	s, h := newJoint(t)
	if err := SetDefaults(s, h); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}
	if err := s.SetAttr(h, AttrAimUpAt, 9, scene.AttrEnum); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if _, _, err := Read(s, h); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Read error = %v, want ErrInvalidValue", err)
	}
}

func TestReadRejectsFractionalValue(t *testing.T) {
	s, h := newJoint(t)
	if err := SetDefaults(s, h); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}
	//1.- A float attribute holding a whole number is accepted.
	_ = s.DeleteAttr(h, AttrAimAt)
	if err := s.SetAttr(h, AttrAimAt, 3.0, scene.AttrFloat); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if cfg, _, err := Read(s, h); err != nil || cfg.AimAt != AimChild {
		t.Fatalf("whole float: cfg %+v err %v", cfg, err)
	}
	//2.- A fractional value is not truncated into a neighbouring enum.
	if err := s.SetAttr(h, AttrAimAt, 2.7, scene.AttrFloat); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if _, _, err := Read(s, h); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Read error = %v, want ErrInvalidValue", err)
	}
}

func TestRemove(t *testing.T) {
	s, h := newJoint(t)
	if err := SetDefaults(s, h); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}
	if err := s.SetAttr(h, "custom", 1, scene.AttrInt); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if err := Remove(s, h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if Has(s, h) {
		t.Fatal("marker still present after Remove")
	}
	if names := s.AttrNames(h); len(names) != 1 || names[0] != "custom" {
		t.Fatalf("attributes after Remove = %v, want [custom]", names)
	}
}

func TestSetActive(t *testing.T) {
	s, h := newJoint(t)
	if err := SetActive(s, h, false); err == nil {
		t.Fatal("SetActive on unconfigured joint should fail")
	}
	_ = SetDefaults(s, h)
	if err := SetActive(s, h, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	cfg, _, _ := Read(s, h)
	if cfg.Active {
		t.Fatal("joint still active")
	}
}

func TestFromValues(t *testing.T) {
	cfg, err := FromValues(map[string]int{AttrUpAxis: int(AxisNegX), AttrActive: 0})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if cfg.UpAxis != AxisNegX || cfg.Active || cfg.AimAxis != AxisPosX {
		t.Fatalf("FromValues = %+v", cfg)
	}
	if _, err := FromValues(map[string]int{"bogus": 1}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("unknown key error = %v", err)
	}
	if _, err := FromValues(map[string]int{AttrAimAxis: 7}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("range error = %v", err)
	}
}

func TestAxisVectors(t *testing.T) {
	cases := []struct {
		axis Axis
		want mathutil.Vec3
	}{
		{AxisPosX, mathutil.Vec3{1, 0, 0}},
		{AxisNegY, mathutil.Vec3{0, -1, 0}},
		{AxisPosZ, mathutil.Vec3{0, 0, 1}},
		{AxisZero, mathutil.Vec3{}},
	}
	for _, c := range cases {
		if got := c.axis.Vector(); got != c.want {
			t.Errorf("%s.Vector() = %v, want %v", c.axis, got, c.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	for _, a := range []Axis{AxisPosX, AxisPosY, AxisPosZ, AxisNegX, AxisNegY, AxisNegZ, AxisZero} {
		got, err := ParseAxis(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAxis(%q) = %v, %v", a.String(), got, err)
		}
	}
	if up, err := ParseAimUpAt("2ndChildPosition"); err != nil || up != UpSecondChildPosition {
		t.Errorf("ParseAimUpAt legacy name = %v, %v", up, err)
	}
	if at, err := ParseAimAt("localParent"); err != nil || at != AimLocalParent {
		t.Errorf("ParseAimAt = %v, %v", at, err)
	}
	if _, err := ParseAnchor("elbow"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ParseAnchor(elbow) error = %v", err)
	}
}
