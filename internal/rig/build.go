package rig

import (
	"fmt"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/mathutil"
	"joint-orient/internal/scene"
)

// Build creates a scene from doc. Local channels are taken as written, so the
// order of joints in the document only matters for sibling order.
func Build(doc *Doc) (*scene.Scene, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	s := scene.New()
	handles := make(map[string]scene.Handle, len(doc.Joints))
	for _, j := range doc.Joints {
		kind, err := scene.ParseKind(j.Kind)
		if err != nil {
			return nil, fmt.Errorf("rig: %s: %w", j.Name, err)
		}
		h, err := s.CreateNode(kind, j.Name)
		if err != nil {
			return nil, fmt.Errorf("rig: create %s: %w", j.Name, err)
		}
		handles[j.Name] = h
	}

	for _, j := range doc.Joints {
		h := handles[j.Name]
		if j.Parent != "" {
			if err := s.AttachLocal(h, handles[j.Parent]); err != nil {
				return nil, fmt.Errorf("rig: parent %s: %w", j.Name, err)
			}
		}
		if err := applyChannels(s, h, j); err != nil {
			return nil, fmt.Errorf("rig: %s: %w", j.Name, err)
		}
	}

	// settings and locks last so channel writes above are not refused
	for _, j := range doc.Joints {
		h := handles[j.Name]
		if j.Orient != nil {
			cfg, err := j.Orient.Config()
			if err != nil {
				return nil, fmt.Errorf("rig: %s: %w", j.Name, err)
			}
			if err := jointcfg.Write(s, h, cfg); err != nil {
				return nil, fmt.Errorf("rig: %s: %w", j.Name, err)
			}
		}
		for _, name := range j.Locked {
			ch, err := scene.ParseChannel(name)
			if err != nil {
				return nil, fmt.Errorf("rig: %s: %w", j.Name, err)
			}
			if err := s.Lock(h, ch, true); err != nil {
				return nil, fmt.Errorf("rig: %s: lock %s: %w", j.Name, name, err)
			}
		}
	}
	return s, nil
}

func applyChannels(s *scene.Scene, h scene.Handle, j Joint) error {
	if err := s.SetTranslate(h, mathutil.Vec3(j.Translate)); err != nil {
		return err
	}
	for _, ch := range []struct {
		name  scene.Channel
		value Vec3
	}{
		{scene.ChannelOrient, j.JointOrient},
		{scene.ChannelRotate, j.Rotate},
		{scene.ChannelRotateAxis, j.RotateAxis},
	} {
		if err := s.SetChannelQuat(h, ch.name, eulerQuat(ch.value)); err != nil {
			return err
		}
	}
	return nil
}

// Capture turns s back into a document, parents before children. Pin
// helpers are left out.
func Capture(s *scene.Scene, name string) (*Doc, error) {
	doc := &Doc{Name: name}
	var stack []scene.Handle
	nodes := s.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		p, _ := s.Parent(nodes[i])
		if p.IsNone() {
			stack = append(stack, nodes[i])
		}
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kind, err := s.Kind(h)
		if err != nil {
			return nil, err
		}
		if kind == scene.KindPin {
			continue
		}
		j, err := captureJoint(s, h, kind)
		if err != nil {
			return nil, fmt.Errorf("rig: capture %s: %w", s.Name(h), err)
		}
		doc.Joints = append(doc.Joints, j)

		kids, _ := s.Children(h)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return doc, nil
}

func captureJoint(s *scene.Scene, h scene.Handle, kind scene.Kind) (Joint, error) {
	j := Joint{Name: s.Name(h)}
	if kind != scene.KindJoint {
		j.Kind = kind.String()
	}
	if p, _ := s.Parent(h); !p.IsNone() {
		j.Parent = s.Name(p)
	}
	t, err := s.Translate(h)
	if err != nil {
		return Joint{}, err
	}
	j.Translate = Vec3(t)
	for _, ch := range []struct {
		dst  *Vec3
		name scene.Channel
	}{
		{&j.JointOrient, scene.ChannelOrient},
		{&j.Rotate, scene.ChannelRotate},
		{&j.RotateAxis, scene.ChannelRotateAxis},
	} {
		q, err := s.ChannelQuat(h, ch.name)
		if err != nil {
			return Joint{}, err
		}
		*ch.dst = deg(mathutil.QuatToMat3(q))
	}
	for _, ch := range s.Locked(h) {
		j.Locked = append(j.Locked, string(ch))
	}
	cfg, ok, err := jointcfg.Read(s, h)
	if err != nil {
		return Joint{}, err
	}
	if ok {
		j.Orient = OrientFromConfig(cfg)
	}
	return j, nil
}

// eulerQuat converts Euler XYZ degrees to a channel quaternion.
func eulerQuat(v Vec3) mathutil.Quat {
	return mathutil.EulerToQuat(mathutil.Deg2Rad(v[0]), mathutil.Deg2Rad(v[1]), mathutil.Deg2Rad(v[2]))
}

// deg decomposes m and snaps values within 1e-9 of zero to zero so that
// identity channels are omitted from the output.
func deg(m mathutil.Mat3) Vec3 {
	rx, ry, rz := mathutil.Mat3ToEulerXYZ(m)
	v := Vec3{mathutil.Rad2Deg(rx), mathutil.Rad2Deg(ry), mathutil.Rad2Deg(rz)}
	for i := range v {
		if mathutil.ApproxEqual(v[i], 0, 1e-9) {
			v[i] = 0
		}
	}
	return v
}
