package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"joint-orient/internal/mathutil"
)

// Local rotation is composed as jointOrient · rotate · rotateAxis, applied to
// column vectors; world = parentWorld · (translate, localRotation).

func (n *node) localRotation() mgl64.Quat {
	return n.orient.Mul(n.rotate).Mul(n.rotateAxis)
}

func (s *Scene) world(n *node) (mgl64.Vec3, mgl64.Quat) {
	if n.parent.IsNone() {
		return n.translate, n.localRotation()
	}
	p, ok := s.nodes[n.parent]
	if !ok {
		return n.translate, n.localRotation()
	}
	ppos, prot := s.world(p)
	return ppos.Add(prot.Rotate(n.translate)), prot.Mul(n.localRotation())
}

func (s *Scene) parentWorld(n *node) (mgl64.Vec3, mgl64.Quat) {
	if p, ok := s.nodes[n.parent]; ok {
		return s.world(p)
	}
	return mgl64.Vec3{}, mgl64.QuatIdent()
}

// setWorld stores a world transform on n. Joints absorb the rotation in their
// orient channel, other nodes in rotate; rotate and rotateAxis of joints keep
// their values.
func (s *Scene) setWorld(n *node, pos mgl64.Vec3, rot mgl64.Quat) {
	if n.kind == KindJoint {
		s.setWorldPosition(n, pos)
		_, prot := s.parentWorld(n)
		local := prot.Inverse().Mul(rot)
		n.orient = local.Mul(n.rotate.Mul(n.rotateAxis).Inverse()).Normalize()
		return
	}
	s.setWorldPosition(n, pos)
	s.setWorldRotation(n, rot)
}

func (s *Scene) setWorldPosition(n *node, pos mgl64.Vec3) {
	ppos, prot := s.parentWorld(n)
	n.translate = prot.Inverse().Rotate(pos.Sub(ppos))
}

// setWorldRotation drives the rotate channel so that n ends at rot in world space.
func (s *Scene) setWorldRotation(n *node, rot mgl64.Quat) {
	_, prot := s.parentWorld(n)
	local := prot.Inverse().Mul(rot)
	n.rotate = n.orient.Inverse().Mul(local).Mul(n.rotateAxis.Inverse()).Normalize()
}

// WorldPosition returns the world-space position of h.
func (s *Scene) WorldPosition(h Handle) (mathutil.Vec3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Vec3{}, err
	}
	pos, _ := s.world(n)
	return mathutil.Vec3(pos), nil
}

// WorldRotation returns the world-space rotation of h.
func (s *Scene) WorldRotation(h Handle) (mathutil.Mat3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Mat3{}, err
	}
	_, rot := s.world(n)
	return mat3FromQuat(rot), nil
}

// SetWorldPosition moves h to p in world space through its translate channel.
func (s *Scene) SetWorldPosition(h Handle, p mathutil.Vec3) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.checkLock(n, ChannelTranslate); err != nil {
		return err
	}
	s.setWorldPosition(n, mgl64.Vec3(p))
	s.enforcePins()
	return nil
}

// SetWorldRotation rotates h to r in world space through its rotate channel.
func (s *Scene) SetWorldRotation(h Handle, r mathutil.Mat3) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.checkLock(n, ChannelRotate); err != nil {
		return err
	}
	s.setWorldRotation(n, quatFromMat3(r))
	s.enforcePins()
	return nil
}

// Translate returns the local translate channel.
func (s *Scene) Translate(h Handle) (mathutil.Vec3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Vec3{}, err
	}
	return mathutil.Vec3(n.translate), nil
}

func (s *Scene) SetTranslate(h Handle, v mathutil.Vec3) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.checkLock(n, ChannelTranslate); err != nil {
		return err
	}
	n.translate = mgl64.Vec3(v)
	s.enforcePins()
	return nil
}

// LocalRotation returns the rotate channel of h.
func (s *Scene) LocalRotation(h Handle) (mathutil.Mat3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Mat3{}, err
	}
	return mat3FromQuat(n.rotate), nil
}

func (s *Scene) SetLocalRotation(h Handle, r mathutil.Mat3) error {
	return s.setChannel(h, ChannelRotate, quatFromMat3(r))
}

// Orient returns the joint-orient channel of h.
func (s *Scene) Orient(h Handle) (mathutil.Mat3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Mat3{}, err
	}
	return mat3FromQuat(n.orient), nil
}

func (s *Scene) SetOrient(h Handle, r mathutil.Mat3) error {
	return s.setChannel(h, ChannelOrient, quatFromMat3(r))
}

// RotateAxis returns the rotate-axis channel of h.
func (s *Scene) RotateAxis(h Handle) (mathutil.Mat3, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Mat3{}, err
	}
	return mat3FromQuat(n.rotateAxis), nil
}

func (s *Scene) SetRotateAxis(h Handle, r mathutil.Mat3) error {
	return s.setChannel(h, ChannelRotateAxis, quatFromMat3(r))
}

// SetChannelQuat writes a rotation channel from a quaternion.
func (s *Scene) SetChannelQuat(h Handle, ch Channel, q mathutil.Quat) error {
	return s.setChannel(h, ch, quatFromMathutil(q))
}

// ChannelQuat reads a rotation channel as a quaternion.
func (s *Scene) ChannelQuat(h Handle, ch Channel) (mathutil.Quat, error) {
	n, err := s.get(h)
	if err != nil {
		return mathutil.Quat{}, err
	}
	switch ch {
	case ChannelOrient:
		return quatToMathutil(n.orient), nil
	case ChannelRotate:
		return quatToMathutil(n.rotate), nil
	case ChannelRotateAxis:
		return quatToMathutil(n.rotateAxis), nil
	}
	return mathutil.Quat{}, ErrAttrType
}

func (s *Scene) setChannel(h Handle, ch Channel, q mgl64.Quat) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.checkLock(n, ch); err != nil {
		return err
	}
	switch ch {
	case ChannelOrient:
		n.orient = q
	case ChannelRotate:
		n.rotate = q
	case ChannelRotateAxis:
		n.rotateAxis = q
	default:
		return ErrAttrType
	}
	s.enforcePins()
	return nil
}

// BakeRotationIntoOrient folds the rotate channel into joint orient and resets
// rotate to identity. The world transform of h does not change.
func (s *Scene) BakeRotationIntoOrient(h Handle) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.checkLock(n, ChannelRotate); err != nil {
		return err
	}
	if err := s.checkLock(n, ChannelOrient); err != nil {
		return err
	}
	n.orient = n.orient.Mul(n.rotate).Normalize()
	n.rotate = mgl64.QuatIdent()
	return nil
}
