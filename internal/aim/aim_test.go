package aim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"joint-orient/internal/mathutil"
)

const tol = 1e-9

var signedAxes = []mathutil.Vec3{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
}

func randVec(r *rand.Rand, scale float64) mathutil.Vec3 {
	return mathutil.Vec3{
		(r.Float64()*2 - 1) * scale,
		(r.Float64()*2 - 1) * scale,
		(r.Float64()*2 - 1) * scale,
	}
}

func TestSolveIdentity(t *testing.T) {
	res, err := Solve(Input{
		JointPos:  mathutil.Vec3{1, 1, 1},
		AimTarget: mathutil.Vec3{5, 1, 1},
		AimAxis:   mathutil.AxisX,
		UpAxis:    mathutil.AxisY,
		WorldUp:   mathutil.AxisY,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Rotation.ApproxEqual(mathutil.Mat3Identity(), tol) || res.Degenerate {
		t.Fatalf("Solve = %v (degenerate %v), want identity", res.Rotation, res.Degenerate)
	}
}

// Aiming along a local axis with up along another local axis reproduces the identity.
func TestAxisRemapIdentity(t *testing.T) {
	for _, a := range signedAxes {
		for _, u := range signedAxes {
			if math.Abs(a.Dot(u)) > 0 {
				continue
			}
			res, err := Solve(Input{AimTarget: a.Scale(3), AimAxis: a, UpAxis: u, WorldUp: u})
			if err != nil {
				t.Fatalf("aim %v up %v: %v", a, u, err)
			}
			if !res.Rotation.ApproxEqual(mathutil.Mat3Identity(), tol) {
				t.Errorf("aim %v up %v: got %v, want identity", a, u, res.Rotation)
			}
		}
	}
}

func TestSolveOrthonormal(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := signedAxes[r.Intn(6)]
		u := signedAxes[r.Intn(6)]
		if math.Abs(a.Dot(u)) > 0 {
			continue
		}
		in := Input{
			JointPos:  randVec(r, 10),
			AimTarget: randVec(r, 10),
			AimAxis:   a,
			UpAxis:    u,
			WorldUp:   randVec(r, 1),
			UpSpace:   UpVector,
		}
		res, err := Solve(in)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		m := res.Rotation
		if !m.IsOrthonormal(1e-9) || math.Abs(m.Det()-1) > 1e-9 {
			t.Fatalf("case %d: not a rotation: %v det %v", i, m, m.Det())
		}
		//1.- The local aim axis must land on the aim direction.
		dir := in.AimTarget.Sub(in.JointPos).Normalize()
		if got := m.MulVec3(a); !got.ApproxEqual(dir, 1e-9) {
			t.Fatalf("case %d: aim axis maps to %v, want %v", i, got, dir)
		}
		//2.- The local up axis must lie on the aim/up half plane.
		if !res.Degenerate && m.MulVec3(u).Dot(in.WorldUp) < -1e-9 {
			t.Fatalf("case %d: up axis points away from world up", i)
		}
	}
}

func TestDegenerateFallback(t *testing.T) {
	in := Input{
		AimTarget: mathutil.Vec3{0, 2, 0},
		AimAxis:   mathutil.AxisX,
		UpAxis:    mathutil.AxisY,
		WorldUp:   mathutil.AxisY,
	}
	first, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !first.Degenerate {
		t.Fatal("parallel up should report Degenerate")
	}
	second, _ := Solve(in)
	if first.Rotation != second.Rotation {
		t.Fatal("fallback is not deterministic")
	}
	if !first.Rotation.IsOrthonormal(tol) || math.Abs(first.Rotation.Det()-1) > tol {
		t.Fatalf("fallback not a rotation: %v", first.Rotation)
	}
	// aim near +Y uses cross(aim, +X) = (0,0,-1)
	if up := first.Rotation.Column(1); !up.ApproxEqual(mathutil.Vec3{0, 0, -1}, tol) {
		t.Fatalf("fallback up = %v, want (0,0,-1)", up)
	}
}

func TestUpSpaces(t *testing.T) {
	target := mathutil.Vec3{0, 0, 5}
	rot := mathutil.RotX(mathutil.Deg2Rad(90)) // maps +Y to +Z
	cases := []struct {
		name string
		in   Input
	}{
		{"object", Input{UpSpace: UpObject, UpTarget: &target, WorldUp: mathutil.AxisY}},
		{"objectrotation", Input{UpSpace: UpObjectRotation, UpRotation: &rot, WorldUp: mathutil.AxisY}},
		{"vector", Input{UpSpace: UpVector, WorldUp: mathutil.AxisZ}},
	}
	for _, c := range cases {
		in := c.in
		in.AimTarget = mathutil.Vec3{3, 0, 0}
		in.AimAxis = mathutil.AxisX
		in.UpAxis = mathutil.AxisY
		res, err := Solve(in)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if up := res.Rotation.Column(1); !up.ApproxEqual(mathutil.AxisZ, tol) {
			t.Errorf("%s: up column = %v, want +Z", c.name, up)
		}
	}
}

func TestSolveErrors(t *testing.T) {
	base := Input{AimTarget: mathutil.Vec3{1, 0, 0}, AimAxis: mathutil.AxisX, UpAxis: mathutil.AxisY, WorldUp: mathutil.AxisY}

	in := base
	in.AimTarget = in.JointPos
	if _, err := Solve(in); !errors.Is(err, ErrDegenerateAim) {
		t.Errorf("coincident target: %v", err)
	}
	in = base
	in.AimAxis = mathutil.Vec3{}
	if _, err := Solve(in); !errors.Is(err, ErrInvalidAxes) {
		t.Errorf("zero aim axis: %v", err)
	}
	in = base
	in.UpAxis = mathutil.Vec3{-1, 0, 0}
	if _, err := Solve(in); !errors.Is(err, ErrInvalidAxes) {
		t.Errorf("opposite up axis: %v", err)
	}
	in = base
	in.UpAxis = mathutil.Vec3{}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("zero up axis: %v", err)
	}
	if !res.Rotation.Column(0).ApproxEqual(mathutil.AxisX, tol) || !res.Rotation.IsOrthonormal(tol) {
		t.Errorf("zero up axis rotation = %v", res.Rotation)
	}
}
