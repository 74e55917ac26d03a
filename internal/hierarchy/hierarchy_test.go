package hierarchy

import (
	"errors"
	"math"
	"testing"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

type arm struct {
	s                                 *scene.Scene
	shoulder, elbow, wrist, hand, pin scene.Handle
	thumb                             scene.Handle
}

// shoulder → elbow → wrist → (hand, thumb); a group helper under elbow.
func newArm(t *testing.T) arm {
	t.Helper()
	s := scene.New()
	mk := func(kind scene.Kind, name string, parent scene.Handle, x float64) scene.Handle {
		h, err := s.CreateNode(kind, name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if err := s.SetTranslate(h, mathutil.Vec3{x, 0, 0}); err != nil {
			t.Fatalf("translate %s: %v", name, err)
		}
		if !parent.IsNone() {
			if err := s.AttachLocal(h, parent); err != nil {
				t.Fatalf("attach %s: %v", name, err)
			}
		}
		return h
	}
	a := arm{s: s}
	a.shoulder = mk(scene.KindJoint, "shoulder", scene.None, 0)
	a.elbow = mk(scene.KindJoint, "elbow", a.shoulder, 3)
	a.pin = mk(scene.KindGroup, "elbow_helper", a.elbow, 0)
	a.wrist = mk(scene.KindJoint, "wrist", a.elbow, 3)
	a.hand = mk(scene.KindJoint, "hand", a.wrist, 1)
	a.thumb = mk(scene.KindJoint, "thumb", a.wrist, 0.5)
	return a
}

func TestResolve(t *testing.T) {
	a := newArm(t)

	ctx, err := Resolve(a.s, a.elbow)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Context{Self: a.elbow, Parent: a.shoulder, Child: a.wrist, Grandchild: a.hand}
	if ctx != want {
		t.Fatalf("Resolve(elbow) = %+v, want %+v", ctx, want)
	}

	ctx, _ = Resolve(a.s, a.wrist)
	if ctx.Grandparent != a.shoulder || ctx.Child != a.hand || ctx.Child2 != a.thumb {
		t.Fatalf("Resolve(wrist) = %+v", ctx)
	}

	ctx, _ = Resolve(a.s, a.shoulder)
	if !ctx.Parent.IsNone() || !ctx.Grandparent.IsNone() {
		t.Fatalf("root should have no parent: %+v", ctx)
	}
}

func TestAnchorIsOneToOne(t *testing.T) {
	a := newArm(t)
	ctx, _ := Resolve(a.s, a.elbow)
	ctx.Grandparent = a.pin // any distinct handle
	seen := map[scene.Handle]jointcfg.Anchor{}
	for _, role := range []jointcfg.Anchor{
		jointcfg.AnchorGrandparent, jointcfg.AnchorParent, jointcfg.AnchorSelf,
		jointcfg.AnchorChild, jointcfg.AnchorGrandchild,
	} {
		h := ctx.Anchor(role)
		if prev, dup := seen[h]; dup {
			t.Fatalf("roles %s and %s resolve to the same node", prev, role)
		}
		seen[h] = role
	}
}

func TestChainHelpers(t *testing.T) {
	a := newArm(t)

	if end, _ := IsEndJoint(a.s, a.hand); !end {
		t.Error("hand should be an end joint")
	}
	if end, _ := IsEndJoint(a.s, a.elbow); end {
		t.Error("elbow is not an end joint")
	}
	if got, _ := EndJoint(a.s, a.shoulder); got != a.hand {
		t.Errorf("EndJoint(shoulder) = %s, want hand", a.s.Name(got))
	}

	list, err := JointList(a.s, a.shoulder, a.hand)
	if err != nil {
		t.Fatalf("JointList: %v", err)
	}
	want := []scene.Handle{a.shoulder, a.elbow, a.wrist, a.hand}
	if len(list) != len(want) {
		t.Fatalf("JointList len = %d, want %d", len(list), len(want))
	}
	for i := range want {
		if list[i] != want[i] {
			t.Fatalf("JointList[%d] = %s, want %s", i, a.s.Name(list[i]), a.s.Name(want[i]))
		}
	}
	if _, err := JointList(a.s, a.hand, a.shoulder); !errors.Is(err, ErrNotDescendant) {
		t.Fatalf("reversed JointList error = %v, want ErrNotDescendant", err)
	}

	l, err := Length(a.s, a.wrist)
	if err != nil || math.Abs(l-1) > 1e-9 {
		t.Fatalf("Length(wrist) = %v, %v, want 1", l, err)
	}
	if l, _ := Length(a.s, a.hand); l != 0 {
		t.Fatalf("Length(hand) = %v, want 0", l)
	}
}
