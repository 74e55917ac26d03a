package rig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

const armYAML = `
name: arm
joints:
  - name: shoulder
    translate: [0, 5, 0]
    jointOrient: [0, 0, 30]
  - name: elbow
    parent: shoulder
    translate: [3, 0, 0]
    rotate: [10, 0, 0]
    locked: [rotateAxis]
    orient:
      aimAt: child
      aimUpAt: trianglePlane
      upAxis: -Z
  - name: ctrl
    parent: elbow
    kind: group
    translate: [0, 1, 0]
  - name: wrist
    parent: elbow
    translate: [3, 0, 0]
`

func TestParseAndBuild(t *testing.T) {
	doc, err := Parse([]byte(armYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("scene has %d nodes, want 4", s.Len())
	}

	elbow, _ := s.Find("elbow")
	pos, _ := s.WorldPosition(elbow)
	want := mathutil.Vec3{3 * 0.8660254037844387, 5 + 3*0.5, 0}
	if !pos.ApproxEqual(want, 1e-9) {
		t.Fatalf("elbow at %v, want %v", pos, want)
	}

	cfg, ok, err := jointcfg.Read(s, elbow)
	if err != nil || !ok {
		t.Fatalf("elbow settings: ok %v err %v", ok, err)
	}
	if cfg.AimAt != jointcfg.AimChild || cfg.AimUpAt != jointcfg.UpTrianglePlane || cfg.UpAxis != jointcfg.AxisNegZ {
		t.Fatalf("elbow settings = %+v", cfg)
	}
	if cfg.AimAxis != jointcfg.AxisPosX || !cfg.Active {
		t.Fatalf("unset fields should keep defaults: %+v", cfg)
	}
	if err := s.SetRotateAxis(elbow, mathutil.Mat3Identity()); !errors.Is(err, scene.ErrLockedChannel) {
		t.Fatalf("rotateAxis should be locked, got %v", err)
	}
	ctrl, _ := s.Find("ctrl")
	if k, _ := s.Kind(ctrl); k != scene.KindGroup {
		t.Fatalf("ctrl kind = %s", k)
	}
}

func TestCaptureRebuildsSameWorld(t *testing.T) {
	doc, err := Parse([]byte(armYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	captured, err := Capture(s, "arm")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "arm.yaml")
	if err := Save(path, captured); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s2, err := Build(loaded)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	for _, name := range []string{"shoulder", "elbow", "ctrl", "wrist"} {
		a, _ := s.Find(name)
		b, ok := s2.Find(name)
		if !ok {
			t.Fatalf("%s lost in capture", name)
		}
		pa, _ := s.WorldPosition(a)
		pb, _ := s2.WorldPosition(b)
		ra, _ := s.WorldRotation(a)
		rb, _ := s2.WorldRotation(b)
		if !pa.ApproxEqual(pb, 1e-9) || !ra.ApproxEqual(rb, 1e-9) {
			t.Fatalf("%s differs after capture", name)
		}
	}
	wrist, _ := s2.Find("wrist")
	if jointcfg.Has(s2, wrist) {
		t.Fatal("wrist gained settings it never had")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unnamed":   "joints:\n  - parent: a\n",
		"duplicate": "joints:\n  - name: a\n  - name: a\n",
		"orphan":    "joints:\n  - name: a\n    parent: b\n",
		"empty":     "   \n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); !errors.Is(err, ErrInvalidDoc) {
			t.Errorf("%s: error = %v, want ErrInvalidDoc", name, err)
		}
	}
}

func TestBuildRejectsCycles(t *testing.T) {
	doc := &Doc{Joints: []Joint{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}}}
	if _, err := Build(doc); !errors.Is(err, scene.ErrInvalidParent) {
		t.Fatalf("cycle error = %v", err)
	}
}

func TestBuildRejectsBadSettings(t *testing.T) {
	doc := &Doc{Joints: []Joint{{Name: "a", Orient: &Orient{AimAt: "sideways"}}}}
	if _, err := Build(doc); !errors.Is(err, jointcfg.ErrInvalidValue) {
		t.Fatalf("bad aimAt error = %v", err)
	}
	doc = &Doc{Joints: []Joint{{Name: "a", Locked: []string{"scale"}}}}
	if _, err := Build(doc); err == nil {
		t.Fatal("unknown locked channel accepted")
	}
}

func TestImportBMDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Player.bmd")
	if err := os.WriteFile(path, append([]byte("BMD\x0a"), bmdBody(t)...), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ImportBMD(path)
	if err != nil {
		t.Fatalf("ImportBMD: %v", err)
	}
	if doc.Name != "Player" || len(doc.Joints) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if _, err := Build(doc); err != nil {
		t.Fatalf("Build: %v", err)
	}
}
