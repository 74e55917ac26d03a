// Package target turns aim and up settings into temporary scene nodes the
// solver can look at.
package target

import (
	"errors"
	"fmt"
	"log/slog"

	"joint-orient/internal/aim"
	"joint-orient/internal/hierarchy"
	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

var (
	ErrMissingRelative  = errors.New("target: missing relative")
	ErrDegeneratePlane  = errors.New("target: triangle anchors are collinear")
	ErrUnsupportedValue = errors.New("target: unsupported setting")
)

// PlaneOffset is how far the triangle-plane node is pushed along its local +Y.
const PlaneOffset = 10.0

// Graph is the scene surface needed to build targets.
type Graph interface {
	Deleter
	CreateNode(kind scene.Kind, name string) (scene.Handle, error)
	Name(h scene.Handle) string
	WorldPosition(h scene.Handle) (mathutil.Vec3, error)
	WorldRotation(h scene.Handle) (mathutil.Mat3, error)
	SetWorldPosition(h scene.Handle, p mathutil.Vec3) error
	SetWorldRotation(h scene.Handle, r mathutil.Mat3) error
}

// Up is a resolved up reference. Node is scene.None when the up space is a
// plain vector.
type Up struct {
	Node    scene.Handle
	Space   aim.UpSpace
	WorldUp mathutil.Vec3
}

// Resolver creates target nodes and records them in a Scratch list.
type Resolver struct {
	g       Graph
	scratch *Scratch
	log     *slog.Logger
}

func NewResolver(g Graph, scratch *Scratch, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{g: g, scratch: scratch, log: log.With(slog.String("component", "target"))}
}

// AimTarget builds the node the aim axis should point at.
func (r *Resolver) AimTarget(ctx hierarchy.Context, at jointcfg.AimAt) (scene.Handle, error) {
	switch at {
	case jointcfg.AimWorldX, jointcfg.AimWorldY, jointcfg.AimWorldZ:
		pos, err := r.g.WorldPosition(ctx.Self)
		if err != nil {
			return scene.None, err
		}
		axis := [...]mathutil.Vec3{mathutil.AxisX, mathutil.AxisY, mathutil.AxisZ}[at-jointcfg.AimWorldX]
		return r.node("aim_"+at.String(), pos.Add(axis), nil)
	case jointcfg.AimChild:
		return r.positionNode(ctx.Child, "child")
	case jointcfg.AimParent:
		return r.positionNode(ctx.Parent, "parent")
	case jointcfg.AimLocalParent:
		if ctx.Parent.IsNone() {
			return scene.None, fmt.Errorf("%w: parent", ErrMissingRelative)
		}
		return r.localUpNode(ctx.Self, ctx.Parent)
	}
	return scene.None, fmt.Errorf("%w: aimAt %d", ErrUnsupportedValue, int(at))
}

// UpTarget builds the up reference for cfg. worldUp is the configured world up
// vector and is carried through for every up space.
func (r *Resolver) UpTarget(ctx hierarchy.Context, cfg jointcfg.Config) (Up, error) {
	up := Up{Space: aim.UpVector, WorldUp: cfg.WorldUpAxis.Vector()}
	var err error
	switch cfg.AimUpAt {
	case jointcfg.UpWorld:
		return up, nil
	case jointcfg.UpParentRotate:
		if ctx.Parent.IsNone() {
			return Up{}, fmt.Errorf("%w: parent", ErrMissingRelative)
		}
		up.Space = aim.UpObjectRotation
		up.Node, err = r.localUpNode(ctx.Self, ctx.Parent)
	case jointcfg.UpChildPosition:
		up.Space = aim.UpObject
		up.Node, err = r.positionNode(ctx.Child, "child")
	case jointcfg.UpTrianglePlane:
		up.Space = aim.UpObject
		up.Node, err = r.TrianglePlane(ctx, cfg.TriangleTop, cfg.TriangleMid, cfg.TriangleBottom)
	case jointcfg.UpSecondChildPosition:
		if ctx.Child2.IsNone() {
			r.log.Warn("no second child for up target, using world up",
				slog.String("joint", r.g.Name(ctx.Self)))
			return up, nil
		}
		up.Space = aim.UpObject
		up.Node, err = r.positionNode(ctx.Child2, "child2")
	default:
		return Up{}, fmt.Errorf("%w: aimUpAt %d", ErrUnsupportedValue, int(cfg.AimUpAt))
	}
	if err != nil {
		return Up{}, err
	}
	return up, nil
}

// UpObject resolves an explicit up object: its rotation, placed in front of
// the joint, with world up (0,1,0) in objectrotation space.
func (r *Resolver) UpObject(ctx hierarchy.Context, obj scene.Handle) (Up, error) {
	if !r.g.Exists(obj) {
		return Up{}, fmt.Errorf("%w: up object %s", ErrMissingRelative, obj)
	}
	h, err := r.localUpNode(ctx.Self, obj)
	if err != nil {
		return Up{}, err
	}
	return Up{Node: h, Space: aim.UpObjectRotation, WorldUp: mathutil.AxisY}, nil
}

// TrianglePlane builds a node lying in the plane of the three anchors. It
// sits at the midpoint of top and bottom with +Y aimed at mid and +X toward
// top, then moves PlaneOffset along its own +Y.
func (r *Resolver) TrianglePlane(ctx hierarchy.Context, top, mid, bottom jointcfg.Anchor) (scene.Handle, error) {
	var pts [3]mathutil.Vec3
	for i, role := range [3]jointcfg.Anchor{top, mid, bottom} {
		h := ctx.Anchor(role)
		if h.IsNone() {
			return scene.None, fmt.Errorf("%w: triangle %s", ErrMissingRelative, role)
		}
		p, err := r.g.WorldPosition(h)
		if err != nil {
			return scene.None, err
		}
		pts[i] = p
	}
	normal := pts[0].Sub(pts[1]).Cross(pts[2].Sub(pts[1]))
	if normal.Len() < aim.DegenerateTolerance {
		return scene.None, ErrDegeneratePlane
	}

	ref := pts[0].Lerp(pts[2], 0.5)
	in := aim.Input{
		JointPos:  ref,
		AimTarget: pts[1],
		AimAxis:   mathutil.AxisY,
		UpAxis:    mathutil.AxisX,
		UpSpace:   aim.UpObject,
		UpTarget:  &pts[0],
	}
	res, err := aim.Solve(in)
	if err != nil {
		return scene.None, fmt.Errorf("target: triangle plane: %w", err)
	}
	pos := ref.Add(res.Rotation.Column(1).Scale(PlaneOffset))
	return r.node("triangle_plane", pos, &res.Rotation)
}

func (r *Resolver) positionNode(rel scene.Handle, role string) (scene.Handle, error) {
	if rel.IsNone() {
		return scene.None, fmt.Errorf("%w: %s", ErrMissingRelative, role)
	}
	pos, err := r.g.WorldPosition(rel)
	if err != nil {
		return scene.None, err
	}
	rot, err := r.g.WorldRotation(rel)
	if err != nil {
		return scene.None, err
	}
	return r.node("position_"+r.g.Name(rel), pos, &rot)
}

// localUpNode matches src's world rotation, sits at joint and moves one unit
// along its own +X.
func (r *Resolver) localUpNode(joint, src scene.Handle) (scene.Handle, error) {
	rot, err := r.g.WorldRotation(src)
	if err != nil {
		return scene.None, err
	}
	pos, err := r.g.WorldPosition(joint)
	if err != nil {
		return scene.None, err
	}
	return r.node("local_up_"+r.g.Name(src), pos.Add(rot.Column(0)), &rot)
}

func (r *Resolver) node(name string, pos mathutil.Vec3, rot *mathutil.Mat3) (scene.Handle, error) {
	h, err := r.g.CreateNode(scene.KindGroup, name)
	if err != nil {
		return scene.None, fmt.Errorf("target: create %s: %w", name, err)
	}
	r.scratch.Track(h)
	if rot != nil {
		if err := r.g.SetWorldRotation(h, *rot); err != nil {
			return scene.None, fmt.Errorf("target: %s: %w", name, err)
		}
	}
	if err := r.g.SetWorldPosition(h, pos); err != nil {
		return scene.None, fmt.Errorf("target: %s: %w", name, err)
	}
	return h, nil
}
