package rig

import (
	"errors"
	"fmt"
	"log/slog"

	"joint-orient/internal/hierarchy"
	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/orient"
	"joint-orient/internal/scene"
)

var ErrEmptyChain = errors.New("rig: empty chain")

// ChainConfig is written on every joint of a point chain except the last one:
// +X down the chain, +Y toward world up.
func ChainConfig() jointcfg.Config {
	cfg := jointcfg.Default()
	cfg.AimAt = jointcfg.AimChild
	cfg.AimUpAt = jointcfg.UpWorld
	cfg.WorldUpAxis = jointcfg.AxisPosY
	return cfg
}

// ChainFromPoints creates one joint per point, each parented under the
// previous one and named side_partN_jnt. With orientChain, every joint but
// the end joint gets ChainConfig and the chain is oriented from its root.
func ChainFromPoints(s *scene.Scene, side, part string, points []mathutil.Vec3, orientChain bool, log *slog.Logger) ([]scene.Handle, orient.Report, error) {
	if len(points) == 0 {
		return nil, orient.Report{}, ErrEmptyChain
	}
	joints := make([]scene.Handle, 0, len(points))
	parent := scene.None
	for i, p := range points {
		name := fmt.Sprintf("%s_%s%d_jnt", side, part, i+1)
		h, err := s.CreateNode(scene.KindJoint, name)
		if err != nil {
			return nil, orient.Report{}, fmt.Errorf("rig: create %s: %w", name, err)
		}
		if !parent.IsNone() {
			if err := s.AttachLocal(h, parent); err != nil {
				return nil, orient.Report{}, fmt.Errorf("rig: parent %s: %w", name, err)
			}
		}
		if err := s.SetWorldPosition(h, p); err != nil {
			return nil, orient.Report{}, fmt.Errorf("rig: place %s: %w", name, err)
		}
		joints = append(joints, h)
		parent = h
	}
	if !orientChain {
		return joints, orient.Report{}, nil
	}

	for _, h := range joints[:len(joints)-1] {
		if err := jointcfg.Write(s, h, ChainConfig()); err != nil {
			return nil, orient.Report{}, fmt.Errorf("rig: configure %s: %w", s.Name(h), err)
		}
	}
	rep := orient.New(s, orient.Options{Logger: log}).OrientHierarchy(joints[:1], false)
	return joints, rep, nil
}

// DuplicateChain copies the joints from start down to end (the end of the
// chain when end is None) and puts the copy under parent. Copies keep the
// world transforms and orientation settings of their originals. With a
// prefix they are named prefixA_jnt, prefixB_jnt ... prefixEnd_jnt, otherwise
// name_dup.
func DuplicateChain(s *scene.Scene, start, end, parent scene.Handle, prefix string) ([]scene.Handle, error) {
	if end.IsNone() {
		var err error
		if end, err = hierarchy.EndJoint(s, start); err != nil {
			return nil, fmt.Errorf("rig: duplicate: %w", err)
		}
	}
	chain, err := hierarchy.JointList(s, start, end)
	if err != nil {
		return nil, fmt.Errorf("rig: duplicate: %w", err)
	}
	if !parent.IsNone() && !s.Exists(parent) {
		return nil, fmt.Errorf("rig: duplicate: parent %w", scene.ErrNodeNotFound)
	}

	dups := make([]scene.Handle, 0, len(chain))
	for i, src := range chain {
		name := s.Name(src) + "_dup"
		if prefix != "" {
			idx := letters(i)
			if i == len(chain)-1 {
				idx = "End"
			}
			name = prefix + idx + "_jnt"
		}
		dst, err := duplicateJoint(s, src, name)
		if err != nil {
			return nil, err
		}
		if err := s.SetParent(dst, parent); err != nil {
			return nil, fmt.Errorf("rig: duplicate %s: %w", name, err)
		}
		dups = append(dups, dst)
		parent = dst
	}
	return dups, nil
}

// duplicateJoint creates a top-level copy of src with the same world
// transform. rotate and rotateAxis are copied, joint orient takes the rest.
func duplicateJoint(s *scene.Scene, src scene.Handle, name string) (scene.Handle, error) {
	kind, err := s.Kind(src)
	if err != nil {
		return scene.None, err
	}
	pos, err := s.WorldPosition(src)
	if err != nil {
		return scene.None, err
	}
	world, _ := s.WorldRotation(src)
	rotate, _ := s.LocalRotation(src)
	axis, _ := s.RotateAxis(src)

	dst, err := s.CreateNode(kind, name)
	if err != nil {
		return scene.None, fmt.Errorf("rig: create %s: %w", name, err)
	}
	if err := s.SetTranslate(dst, pos); err != nil {
		return scene.None, err
	}
	if err := s.SetLocalRotation(dst, rotate); err != nil {
		return scene.None, err
	}
	if err := s.SetRotateAxis(dst, axis); err != nil {
		return scene.None, err
	}
	// world = orient · rotate · rotateAxis for a top-level node
	if err := s.SetOrient(dst, mathutil.Mat3Mul(world, mathutil.Mat3Mul(rotate, axis).Transpose())); err != nil {
		return scene.None, err
	}
	cfg, ok, err := jointcfg.Read(s, src)
	if err != nil {
		return scene.None, fmt.Errorf("rig: duplicate %s: %w", name, err)
	}
	if ok {
		if err := jointcfg.Write(s, dst, cfg); err != nil {
			return scene.None, err
		}
	}
	return dst, nil
}

// letters maps 0, 1 ... 25, 26 to A, B ... Z, AA.
func letters(i int) string {
	var out []byte
	for i++; i > 0; i = (i - 1) / 26 {
		out = append([]byte{byte('A' + (i-1)%26)}, out...)
	}
	return string(out)
}
