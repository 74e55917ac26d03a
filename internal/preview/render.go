// Package preview draws a skeleton as bones, joint dots and axis gizmos into
// a small image.
package preview

import (
	"image"
	"math"

	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

// Source is the scene surface read by Render.
type Source interface {
	Roots() []scene.Handle
	Kind(h scene.Handle) (scene.Kind, error)
	Children(h scene.Handle) ([]scene.Handle, error)
	WorldPosition(h scene.Handle) (mathutil.Vec3, error)
	WorldRotation(h scene.Handle) (mathutil.Mat3, error)
}

// Options controls the camera and output size. Angles are in degrees.
type Options struct {
	Size        int
	Supersample int
	Yaw         float64
	Pitch       float64
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	return o
}

var (
	boneColor  = [4]uint8{200, 200, 210, 255}
	jointColor = [4]uint8{250, 210, 60, 255}
	axisColors = [3][4]uint8{
		{230, 60, 60, 255},
		{60, 200, 80, 255},
		{70, 110, 240, 255},
	}
)

type joint struct {
	pos    mathutil.Vec3
	rot    mathutil.Mat3
	parent int
}

// Render draws every transform node reachable from the scene roots. An empty
// scene yields a transparent image.
func Render(src Source, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	joints := collect(src)
	if len(joints) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	renderSize := opts.Size * opts.Supersample
	view := mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(opts.Pitch)), mathutil.RotY(mathutil.Deg2Rad(opts.Yaw)))

	// bounds in view space, padded by the gizmo length below
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, j := range joints {
		v := view.MulVec3(j.pos)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 1
	}
	gizmo := span * 0.12
	span += 2 * gizmo
	center := lo.Add(hi).Scale(0.5)

	// the margin never takes more than a quarter of each side
	margin := min(16*opts.Supersample, renderSize/4)
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2
	cam := mathutil.FromMat3Translation(view, center.Neg())
	cam = mathutil.Mat4Mul(mathutil.FromMat3Translation(mathutil.Mat3Diag(scale, -scale, 1), mathutil.Vec3{half, half, 0}), cam)

	fb := NewFrameBuffer(renderSize, renderSize)
	stroke := opts.Supersample
	for _, j := range joints {
		if j.parent < 0 {
			continue
		}
		a := cam.MulPoint(joints[j.parent].pos)
		b := cam.MulPoint(j.pos)
		fb.Line(a[0], a[1], a[2], b[0], b[1], b[2], 2*stroke, boneColor)
	}
	for _, j := range joints {
		o := cam.MulPoint(j.pos)
		for k := 0; k < 3; k++ {
			tip := cam.MulPoint(j.pos.Add(j.rot.Column(k).Scale(gizmo)))
			fb.Line(o[0], o[1], o[2], tip[0], tip[1], tip[2], stroke, axisColors[k])
		}
		fb.Disc(o[0], o[1], o[2], 3*stroke, jointColor)
	}

	img := fb.Image()
	if opts.Supersample > 1 {
		img = Downsample(img, opts.Size)
	}
	return img
}

// collect walks the transform nodes depth-first, parents before children.
func collect(src Source) []joint {
	type item struct {
		h      scene.Handle
		parent int
	}
	var out []joint
	var stack []item
	roots := src.Roots()
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], -1})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kind, err := src.Kind(it.h)
		if err != nil || !kind.IsTransform() {
			continue
		}
		pos, err := src.WorldPosition(it.h)
		if err != nil {
			continue
		}
		rot, _ := src.WorldRotation(it.h)
		out = append(out, joint{pos: pos, rot: rot, parent: it.parent})
		idx := len(out) - 1

		kids, _ := src.Children(it.h)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{kids[i], idx})
		}
	}
	return out
}
