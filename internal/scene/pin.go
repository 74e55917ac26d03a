package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

type pin struct {
	helper Handle
	target Handle
	pos    mgl64.Vec3
	rot    mgl64.Quat
}

// PinWorld records the current world transform of target and holds it there
// until the returned helper node is deleted. Pins are re-applied after every
// mutation of the scene, ancestors first.
func (s *Scene) PinWorld(target Handle) (Handle, error) {
	n, err := s.get(target)
	if err != nil {
		return None, err
	}
	pos, rot := s.world(n)
	helper, err := s.CreateNode(KindPin, "pin_"+n.name)
	if err != nil {
		return None, err
	}
	s.pins = append(s.pins, &pin{helper: helper, target: target, pos: pos, rot: rot})
	return helper, nil
}

// Pinned reports whether h is held by a pin.
func (s *Scene) Pinned(h Handle) bool {
	for _, p := range s.pins {
		if p.target == h {
			return true
		}
	}
	return false
}

func (s *Scene) enforcePins() {
	if len(s.pins) == 0 {
		return
	}
	pins := append([]*pin(nil), s.pins...)
	sort.SliceStable(pins, func(i, j int) bool {
		return s.depth(pins[i].target) < s.depth(pins[j].target)
	})
	for _, p := range pins {
		n, ok := s.nodes[p.target]
		if !ok {
			continue
		}
		s.setWorldPosition(n, p.pos)
		s.setWorldRotation(n, p.rot)
	}
}

func (s *Scene) dropPins(h Handle) {
	kept := s.pins[:0]
	for _, p := range s.pins {
		if p.helper == h || p.target == h {
			continue
		}
		kept = append(kept, p)
	}
	s.pins = kept
}

func (s *Scene) depth(h Handle) int {
	d := 0
	for n, ok := s.nodes[h]; ok && !n.parent.IsNone(); n, ok = s.nodes[n.parent] {
		d++
	}
	return d
}
