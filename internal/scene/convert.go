package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"joint-orient/internal/mathutil"
)

// mgl64 matrices are column-major, mathutil matrices row-major.

func quatFromMat3(r mathutil.Mat3) mgl64.Quat {
	return mgl64.Mat4ToQuat(mgl64.Mat3(r).Transpose().Mat4()).Normalize()
}

func mat3FromQuat(q mgl64.Quat) mathutil.Mat3 {
	return mathutil.Mat3(q.Normalize().Mat4().Mat3().Transpose())
}

func quatFromMathutil(q mathutil.Quat) mgl64.Quat {
	return mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}.Normalize()
}

func quatToMathutil(q mgl64.Quat) mathutil.Quat {
	return mathutil.Quat{q.V[0], q.V[1], q.V[2], q.W}
}
