// Package orient runs the per-joint orientation procedure and the batch
// traversal over a hierarchy.
package orient

import (
	"errors"
	"fmt"
	"log/slog"

	"joint-orient/internal/aim"
	"joint-orient/internal/hierarchy"
	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
	"joint-orient/internal/target"
)

var (
	// ErrInvalidNode is the only error Run returns to callers.
	ErrInvalidNode = errors.New("orient: invalid node")
	// ErrInactive marks joints skipped because their settings are inactive.
	ErrInactive = errors.New("orient: joint is inactive")
)

// Graph is the scene surface the engine drives.
type Graph interface {
	target.Graph
	jointcfg.Store
	Kind(h scene.Handle) (scene.Kind, error)
	Parent(h scene.Handle) (scene.Handle, error)
	Children(h scene.Handle) ([]scene.Handle, error)
	Roots() []scene.Handle
	SetParent(h, parent scene.Handle) error
	BakeRotationIntoOrient(h scene.Handle) error
	SetRotateAxis(h scene.Handle, r mathutil.Mat3) error
	SetChannelQuat(h scene.Handle, ch scene.Channel, q mathutil.Quat) error
	ChannelQuat(h scene.Handle, ch scene.Channel) (mathutil.Quat, error)
	PinWorld(h scene.Handle) (scene.Handle, error)
}

// State is the position of a joint in the orientation procedure.
type State int

const (
	Inactive State = iota
	Skipped
	Active
	Prepared
	Solved
	Baked
	Failed
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Skipped:
		return "skipped"
	case Active:
		return "active"
	case Prepared:
		return "prepared"
	case Solved:
		return "solved"
	case Baked:
		return "baked"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the terminal state of one Run. Err holds the recovered
// condition for Skipped and Failed joints.
type Outcome struct {
	Joint      scene.Handle
	State      State
	Err        error
	Degenerate bool
}

// Options configures an Engine.
type Options struct {
	Logger *slog.Logger
	// UpObject, when set, overrides aimUpAt for every joint: its rotation
	// becomes the up reference in objectrotation space.
	UpObject scene.Handle
}

// Engine orients joints of one scene. It is not safe for concurrent use.
type Engine struct {
	g    Graph
	opts Options
	log  *slog.Logger
}

func New(g Graph, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{g: g, opts: opts, log: log.With(slog.String("component", "orient"))}
}

// Run orients joint from its stored settings, or from Default when it has
// none.
func (e *Engine) Run(joint scene.Handle) (Outcome, error) {
	if err := e.checkNode(joint); err != nil {
		return Outcome{}, err
	}
	cfg, ok, err := jointcfg.Read(e.g, joint)
	if err != nil {
		e.warn(joint, "unreadable orientation settings", err)
		return Outcome{Joint: joint, State: Failed, Err: err}, nil
	}
	if !ok {
		e.log.Warn("no orientation settings, using defaults", slog.String("joint", e.g.Name(joint)))
		cfg = jointcfg.Default()
	}
	return e.run(joint, cfg), nil
}

// RunConfig orients joint with cfg without touching its stored settings.
func (e *Engine) RunConfig(joint scene.Handle, cfg jointcfg.Config) (Outcome, error) {
	if err := e.checkNode(joint); err != nil {
		return Outcome{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Outcome{Joint: joint, State: Failed, Err: err}, nil
	}
	return e.run(joint, cfg), nil
}

func (e *Engine) run(joint scene.Handle, cfg jointcfg.Config) Outcome {
	out := Outcome{Joint: joint, State: Inactive}
	if !cfg.Active {
		e.warn(joint, "orientation settings are inactive, skipping", nil)
		out.State, out.Err = Skipped, ErrInactive
		return out
	}
	out.State = Active

	if err := e.freeze(joint); err != nil {
		e.warn(joint, "freeze", err)
	}

	out = e.solve(joint, cfg, out)
	if out.State != Solved {
		return out
	}

	if err := e.freeze(joint); err != nil {
		e.warn(joint, "re-freeze", err)
	}
	out.State = Baked
	return out
}

// solve pins the relatives, builds targets and applies the rotation. Every
// temporary node is deleted before it returns.
func (e *Engine) solve(joint scene.Handle, cfg jointcfg.Config, out Outcome) Outcome {
	var undo func()
	fail := func(reason string, err error) Outcome {
		e.warn(joint, reason, err)
		if undo != nil {
			undo()
		}
		out.State, out.Err = Failed, err
		return out
	}

	ctx, err := hierarchy.Resolve(e.g, joint)
	if err != nil {
		return fail("resolve relatives", err)
	}

	scratch := target.NewScratch(e.g)
	defer func() {
		if err := scratch.Flush(); err != nil {
			e.log.Error("cleanup failed", slog.String("joint", e.g.Name(joint)), slog.Any("error", err))
		}
	}()

	held, err := e.held(joint, ctx)
	if err != nil {
		return fail("collect relatives", err)
	}
	for _, rel := range held {
		pin, err := e.g.PinWorld(rel)
		if err != nil {
			return fail("pin relative", err)
		}
		scratch.Track(pin)
	}
	out.State = Prepared

	in, err := e.input(joint, ctx, cfg, target.NewResolver(e.g, scratch, e.log))
	if err != nil {
		return fail("resolve targets", err)
	}

	prevAxis, err := e.g.ChannelQuat(joint, scene.ChannelRotateAxis)
	if err != nil {
		return fail("read rotate axis", err)
	}
	if err := e.g.SetRotateAxis(joint, mathutil.Mat3Identity()); err != nil {
		if !errors.Is(err, scene.ErrLockedChannel) {
			return fail("zero rotate axis", err)
		}
		e.warn(joint, "could not zero rotate axis", err)
	} else {
		undo = func() {
			if err := e.g.SetChannelQuat(joint, scene.ChannelRotateAxis, prevAxis); err != nil {
				e.log.Error("restore rotate axis", slog.String("joint", e.g.Name(joint)), slog.Any("error", err))
			}
		}
	}

	res, err := aim.Solve(in)
	if err != nil {
		return fail("solve", err)
	}
	if res.Degenerate {
		e.warn(joint, "up direction parallel to aim direction, using fallback", nil)
		out.Degenerate = true
	}
	if err := e.g.SetWorldRotation(joint, res.Rotation); err != nil {
		return fail("apply rotation", err)
	}
	out.State = Solved
	return out
}

// held lists the nodes that must not move while joint is solved: the parent,
// every direct child other than pin helpers, and the grandchild.
func (e *Engine) held(joint scene.Handle, ctx hierarchy.Context) ([]scene.Handle, error) {
	var out []scene.Handle
	if !ctx.Parent.IsNone() {
		out = append(out, ctx.Parent)
	}
	kids, err := e.movable(joint)
	if err != nil {
		return nil, err
	}
	out = append(out, kids...)
	if !ctx.Grandchild.IsNone() {
		out = append(out, ctx.Grandchild)
	}
	return out, nil
}

// movable returns the children of h that follow it, which is every child but
// pin helpers.
func (e *Engine) movable(h scene.Handle) ([]scene.Handle, error) {
	kids, err := e.g.Children(h)
	if err != nil {
		return nil, err
	}
	out := make([]scene.Handle, 0, len(kids))
	for _, k := range kids {
		kind, err := e.g.Kind(k)
		if err != nil {
			return nil, err
		}
		if kind != scene.KindPin {
			out = append(out, k)
		}
	}
	return out, nil
}

func (e *Engine) input(joint scene.Handle, ctx hierarchy.Context, cfg jointcfg.Config, r *target.Resolver) (aim.Input, error) {
	aimNode, err := r.AimTarget(ctx, cfg.AimAt)
	if err != nil {
		return aim.Input{}, err
	}
	var up target.Up
	if e.opts.UpObject.IsNone() {
		up, err = r.UpTarget(ctx, cfg)
	} else {
		up, err = r.UpObject(ctx, e.opts.UpObject)
	}
	if err != nil {
		return aim.Input{}, err
	}

	in := aim.Input{
		AimAxis: cfg.AimAxis.Vector(),
		UpAxis:  cfg.UpAxis.Vector(),
		WorldUp: up.WorldUp,
		UpSpace: up.Space,
	}
	if in.JointPos, err = e.g.WorldPosition(joint); err != nil {
		return aim.Input{}, err
	}
	if in.AimTarget, err = e.g.WorldPosition(aimNode); err != nil {
		return aim.Input{}, err
	}
	if !up.Node.IsNone() {
		pos, err := e.g.WorldPosition(up.Node)
		if err != nil {
			return aim.Input{}, err
		}
		rot, err := e.g.WorldRotation(up.Node)
		if err != nil {
			return aim.Input{}, err
		}
		in.UpTarget, in.UpRotation = &pos, &rot
	}
	return in, nil
}

// freeze moves the rotate channel of joint into its joint orient. Children
// are parked in world space meanwhile so they do not move.
func (e *Engine) freeze(joint scene.Handle) error {
	kids, err := e.movable(joint)
	if err != nil {
		return err
	}
	var parked []scene.Handle
	for _, k := range kids {
		if err := e.g.SetParent(k, scene.None); err != nil {
			return fmt.Errorf("orient: detach %s: %w", e.g.Name(k), err)
		}
		parked = append(parked, k)
	}
	bakeErr := e.g.BakeRotationIntoOrient(joint)
	for _, k := range parked {
		if err := e.g.SetParent(k, joint); err != nil {
			return fmt.Errorf("orient: reattach %s: %w", e.g.Name(k), err)
		}
	}
	return bakeErr
}

// ZeroOrient replaces the joint orient of joint with its rotate channel and
// resets rotate. Children follow the joint.
func (e *Engine) ZeroOrient(joint scene.Handle) error {
	kind, err := e.g.Kind(joint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if kind != scene.KindJoint {
		return nil
	}
	rot, err := e.g.ChannelQuat(joint, scene.ChannelRotate)
	if err != nil {
		return err
	}
	if err := e.g.SetChannelQuat(joint, scene.ChannelRotate, mathutil.QuatIdentity()); err != nil {
		return err
	}
	return e.g.SetChannelQuat(joint, scene.ChannelOrient, rot)
}

func (e *Engine) checkNode(h scene.Handle) error {
	kind, err := e.g.Kind(h)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if !kind.IsTransform() {
		return fmt.Errorf("%w: %s is a %s", ErrInvalidNode, e.g.Name(h), kind)
	}
	return nil
}

func (e *Engine) warn(joint scene.Handle, reason string, err error) {
	attrs := []any{slog.String("joint", e.g.Name(joint)), slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	e.log.Warn("orientation", attrs...)
}
