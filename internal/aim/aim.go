// Package aim computes look-at rotations with a signed remap of the aim and
// up axes onto the local frame.
package aim

import (
	"errors"
	"fmt"
	"math"

	"joint-orient/internal/mathutil"
)

var (
	ErrDegenerateAim = errors.New("aim: aim target coincides with joint")
	ErrInvalidAxes   = errors.New("aim: invalid axis pair")
)

// DegenerateTolerance is the residual length below which the up vector is
// treated as parallel to the aim direction.
const DegenerateTolerance = 1e-6

// UpSpace selects how the up reference is interpreted.
type UpSpace int

const (
	// UpVector uses WorldUp as a world direction.
	UpVector UpSpace = iota
	// UpObject points toward UpTarget.
	UpObject
	// UpObjectRotation uses WorldUp rotated by UpRotation.
	UpObjectRotation
)

func (u UpSpace) String() string {
	switch u {
	case UpVector:
		return "vector"
	case UpObject:
		return "object"
	case UpObjectRotation:
		return "objectrotation"
	}
	return fmt.Sprintf("upSpace(%d)", int(u))
}

// Input describes one solve. AimAxis and UpAxis are signed unit local axes;
// a zero UpAxis keeps only the aim constraint.
type Input struct {
	JointPos  mathutil.Vec3
	AimTarget mathutil.Vec3
	AimAxis   mathutil.Vec3
	UpAxis    mathutil.Vec3
	WorldUp   mathutil.Vec3
	UpSpace   UpSpace

	UpTarget   *mathutil.Vec3
	UpRotation *mathutil.Mat3
}

// Result is a world rotation whose columns are the local axes in world space.
// Degenerate is set when the up reference was parallel to the aim direction
// and the fixed fallback was used.
type Result struct {
	Rotation   mathutil.Mat3
	Degenerate bool
}

// Solve returns the rotation that points AimAxis at AimTarget and UpAxis as
// close as possible to the up reference. The result is orthonormal with
// determinant +1.
func Solve(in Input) (Result, error) {
	ia, sa, ok := axisIndex(in.AimAxis)
	if !ok {
		return Result{}, fmt.Errorf("%w: aim axis %v", ErrInvalidAxes, in.AimAxis)
	}
	iu, su, hasUp := axisIndex(in.UpAxis)
	if hasUp && iu == ia {
		return Result{}, fmt.Errorf("%w: up axis %v parallel to aim axis %v", ErrInvalidAxes, in.UpAxis, in.AimAxis)
	}
	if !hasUp && !in.UpAxis.IsZero() {
		return Result{}, fmt.Errorf("%w: up axis %v", ErrInvalidAxes, in.UpAxis)
	}

	aimDir := in.AimTarget.Sub(in.JointPos)
	if aimDir.Len() < mathutil.Epsilon {
		return Result{}, ErrDegenerateAim
	}
	aimDir = aimDir.Normalize()

	var res Result
	var up mathutil.Vec3
	if hasUp {
		up, res.Degenerate = orthogonalUp(aimDir, providedUp(in))
	} else {
		iu, su = (ia+1)%3, 1
		up = fallbackUp(aimDir)
	}

	var cols [3]mathutil.Vec3
	cols[ia] = aimDir.Scale(sa)
	cols[iu] = up.Scale(su)
	it := 3 - ia - iu
	if iu == (ia+1)%3 {
		cols[it] = cols[ia].Cross(cols[iu])
	} else {
		cols[it] = cols[iu].Cross(cols[ia])
	}
	res.Rotation = mathutil.Mat3FromColumns(cols[0], cols[1], cols[2])
	return res, nil
}

func providedUp(in Input) mathutil.Vec3 {
	switch in.UpSpace {
	case UpObject:
		if in.UpTarget == nil {
			return mathutil.Vec3{}
		}
		return in.UpTarget.Sub(in.JointPos)
	case UpObjectRotation:
		if in.UpRotation == nil {
			return in.WorldUp
		}
		return in.UpRotation.MulVec3(in.WorldUp)
	}
	return in.WorldUp
}

// orthogonalUp removes the aim component from up (Gram-Schmidt).
func orthogonalUp(aimDir, up mathutil.Vec3) (mathutil.Vec3, bool) {
	r := up.Sub(aimDir.Scale(up.Dot(aimDir)))
	if r.Len() < DegenerateTolerance {
		return fallbackUp(aimDir), true
	}
	return r.Normalize(), false
}

// fallbackUp is cross(aimDir, +Y), or cross(aimDir, +X) when aimDir is
// close to ±Y.
func fallbackUp(aimDir mathutil.Vec3) mathutil.Vec3 {
	ref := mathutil.AxisY
	if math.Abs(aimDir.Dot(ref)) > 1-DegenerateTolerance {
		ref = mathutil.AxisX
	}
	return aimDir.Cross(ref).Normalize()
}

// axisIndex decodes a signed unit axis. ok is false for anything else.
func axisIndex(v mathutil.Vec3) (idx int, sign float64, ok bool) {
	idx = -1
	for i, c := range v {
		switch {
		case c == 0:
		case idx < 0 && math.Abs(math.Abs(c)-1) < mathutil.Epsilon:
			idx, sign = i, math.Copysign(1, c)
		default:
			return 0, 0, false
		}
	}
	return idx, sign, idx >= 0
}
