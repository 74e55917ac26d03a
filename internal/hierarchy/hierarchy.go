// Package hierarchy resolves the relatives of a joint that the orientation
// rules refer to, and walks joint chains.
package hierarchy

import (
	"errors"
	"fmt"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

// ErrNotDescendant is returned by JointList when end is not below start.
var ErrNotDescendant = errors.New("hierarchy: not a descendant")

// Tree is the read-only part of the scene graph used here.
type Tree interface {
	Exists(h scene.Handle) bool
	Kind(h scene.Handle) (scene.Kind, error)
	Parent(h scene.Handle) (scene.Handle, error)
	Children(h scene.Handle) ([]scene.Handle, error)
}

// Context holds the relatives of one joint. Missing relatives are scene.None.
// It is a snapshot and must be resolved again after any reparenting.
type Context struct {
	Self        scene.Handle
	Parent      scene.Handle
	Grandparent scene.Handle
	Child       scene.Handle
	Child2      scene.Handle
	Grandchild  scene.Handle
}

// Resolve gathers the relatives of joint. Helper nodes (groups, pins) are not
// counted as children.
func Resolve(t Tree, joint scene.Handle) (Context, error) {
	ctx := Context{Self: joint}
	p, err := t.Parent(joint)
	if err != nil {
		return Context{}, fmt.Errorf("hierarchy: resolve: %w", err)
	}
	ctx.Parent = p
	if !p.IsNone() {
		if ctx.Grandparent, err = t.Parent(p); err != nil {
			return Context{}, fmt.Errorf("hierarchy: resolve: %w", err)
		}
	}
	kids, err := transformChildren(t, joint)
	if err != nil {
		return Context{}, fmt.Errorf("hierarchy: resolve: %w", err)
	}
	if len(kids) > 0 {
		ctx.Child = kids[0]
		grand, err := transformChildren(t, ctx.Child)
		if err != nil {
			return Context{}, fmt.Errorf("hierarchy: resolve: %w", err)
		}
		if len(grand) > 0 {
			ctx.Grandchild = grand[0]
		}
	}
	if len(kids) > 1 {
		ctx.Child2 = kids[1]
	}
	return ctx, nil
}

// Anchor maps a triangle role to the relative filling it.
func (c Context) Anchor(role jointcfg.Anchor) scene.Handle {
	switch role {
	case jointcfg.AnchorGrandparent:
		return c.Grandparent
	case jointcfg.AnchorParent:
		return c.Parent
	case jointcfg.AnchorSelf:
		return c.Self
	case jointcfg.AnchorChild:
		return c.Child
	case jointcfg.AnchorGrandchild:
		return c.Grandchild
	}
	return scene.None
}

// Relatives returns the existing relatives other than Self, without duplicates.
func (c Context) Relatives() []scene.Handle {
	var out []scene.Handle
	seen := map[scene.Handle]bool{}
	for _, h := range []scene.Handle{c.Parent, c.Grandparent, c.Child, c.Child2, c.Grandchild} {
		if h.IsNone() || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

func transformChildren(t Tree, h scene.Handle) ([]scene.Handle, error) {
	kids, err := t.Children(h)
	if err != nil {
		return nil, err
	}
	out := make([]scene.Handle, 0, len(kids))
	for _, k := range kids {
		kind, err := t.Kind(k)
		if err != nil {
			return nil, err
		}
		if kind.IsTransform() {
			out = append(out, k)
		}
	}
	return out, nil
}

// IsEndJoint reports whether h has no transform children.
func IsEndJoint(t Tree, h scene.Handle) (bool, error) {
	kids, err := transformChildren(t, h)
	if err != nil {
		return false, err
	}
	return len(kids) == 0, nil
}

// EndJoint follows the first child from h down to the end of the chain.
func EndJoint(t Tree, h scene.Handle) (scene.Handle, error) {
	for {
		kids, err := transformChildren(t, h)
		if err != nil {
			return scene.None, err
		}
		if len(kids) == 0 {
			return h, nil
		}
		h = kids[0]
	}
}

// JointList returns the chain from start to end inclusive.
func JointList(t Tree, start, end scene.Handle) ([]scene.Handle, error) {
	if !t.Exists(start) {
		return nil, fmt.Errorf("hierarchy: %w: %s", scene.ErrNodeNotFound, start)
	}
	var rev []scene.Handle
	for h := end; ; {
		rev = append(rev, h)
		if h == start {
			break
		}
		p, err := t.Parent(h)
		if err != nil {
			return nil, fmt.Errorf("hierarchy: joint list: %w", err)
		}
		if p.IsNone() {
			return nil, fmt.Errorf("%w: %s is not below %s", ErrNotDescendant, end, start)
		}
		h = p
	}
	out := make([]scene.Handle, len(rev))
	for i, h := range rev {
		out[len(rev)-1-i] = h
	}
	return out, nil
}

// Positioner supplies world positions for Length.
type Positioner interface {
	Tree
	WorldPosition(h scene.Handle) (mathutil.Vec3, error)
}

// Length is the largest distance from h to one of its direct joint children;
// zero for end joints.
func Length(t Positioner, h scene.Handle) (float64, error) {
	kids, err := transformChildren(t, h)
	if err != nil {
		return 0, err
	}
	pos, err := t.WorldPosition(h)
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, k := range kids {
		kp, err := t.WorldPosition(k)
		if err != nil {
			return 0, err
		}
		if d := kp.Sub(pos).Len(); d > best {
			best = d
		}
	}
	return best, nil
}
