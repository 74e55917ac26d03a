// Package scene is an in-memory scene graph and attribute store.
//
// It stands in for the host application: nodes form a rooted forest, each node
// carries translate / joint-orient / rotate / rotate-axis channels, and world
// transforms are derived from the parent chain. Pin helpers keep a node fixed in
// world space while its ancestors change.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	ErrNodeNotFound  = errors.New("scene: node not found")
	ErrLockedChannel = errors.New("scene: channel is locked")
	ErrInvalidParent = errors.New("scene: invalid parent")
	ErrAttrType      = errors.New("scene: attribute type mismatch")
	ErrAttrNotFound  = errors.New("scene: attribute not found")
)

// Handle identifies a node. The zero value (None) means "no node" or "world".
type Handle uuid.UUID

// None is the absent handle; as a parent it means world space.
var None Handle

func (h Handle) IsNone() bool { return h == None }

func (h Handle) String() string {
	if h.IsNone() {
		return "<none>"
	}
	return uuid.UUID(h).String()
}

// Kind is the node type.
type Kind int

const (
	KindJoint Kind = iota
	KindTransform
	KindGroup // empty helper used as a position/orientation reference
	KindPin   // pin helper created by PinWorld
)

func (k Kind) String() string {
	switch k {
	case KindJoint:
		return "joint"
	case KindTransform:
		return "transform"
	case KindGroup:
		return "group"
	case KindPin:
		return "pin"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsTransform reports whether nodes of this kind can be oriented.
func (k Kind) IsTransform() bool {
	return k == KindJoint || k == KindTransform
}

// ParseKind parses "joint" or "transform" (case-sensitive).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "joint":
		return KindJoint, nil
	case "transform":
		return KindTransform, nil
	case "group":
		return KindGroup, nil
	}
	return 0, fmt.Errorf("scene: unknown node kind %q", s)
}

// Channel names a lockable transform channel.
type Channel string

const (
	ChannelTranslate  Channel = "translate"
	ChannelRotate     Channel = "rotate"
	ChannelOrient     Channel = "jointOrient"
	ChannelRotateAxis Channel = "rotateAxis"
)

// ParseChannel validates a channel name.
func ParseChannel(s string) (Channel, error) {
	switch ch := Channel(s); ch {
	case ChannelTranslate, ChannelRotate, ChannelOrient, ChannelRotateAxis:
		return ch, nil
	}
	return "", fmt.Errorf("scene: unknown channel %q", s)
}

type node struct {
	id       Handle
	name     string
	kind     Kind
	parent   Handle
	children []Handle

	translate  mgl64.Vec3
	orient     mgl64.Quat
	rotate     mgl64.Quat
	rotateAxis mgl64.Quat

	locked map[Channel]bool
	attrs  map[string]*attribute
}

// Scene is a single-threaded scene graph. It is not safe for concurrent use.
type Scene struct {
	nodes map[Handle]*node
	order []Handle
	pins  []*pin
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{nodes: make(map[Handle]*node)}
}

// CreateNode adds a node at world origin with identity channels.
func (s *Scene) CreateNode(kind Kind, name string) (Handle, error) {
	h := Handle(uuid.New())
	s.nodes[h] = &node{
		id:         h,
		name:       name,
		kind:       kind,
		orient:     mgl64.QuatIdent(),
		rotate:     mgl64.QuatIdent(),
		rotateAxis: mgl64.QuatIdent(),
		locked:     make(map[Channel]bool),
		attrs:      make(map[string]*attribute),
	}
	s.order = append(s.order, h)
	return h, nil
}

// DeleteNodes removes the given nodes together with their descendants and any
// pins they own or are targeted by. Handles that no longer exist are ignored.
func (s *Scene) DeleteNodes(hs ...Handle) error {
	for _, h := range hs {
		n, ok := s.nodes[h]
		if !ok {
			continue
		}
		for _, c := range append([]Handle(nil), n.children...) {
			if err := s.DeleteNodes(c); err != nil {
				return err
			}
		}
		if !n.parent.IsNone() {
			if p, ok := s.nodes[n.parent]; ok {
				p.children = remove(p.children, h)
			}
		}
		delete(s.nodes, h)
		s.order = remove(s.order, h)
		s.dropPins(h)
	}
	return nil
}

// Exists reports whether h refers to a live node.
func (s *Scene) Exists(h Handle) bool {
	_, ok := s.nodes[h]
	return ok
}

// Len returns the number of live nodes, helpers included.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Nodes returns every live node in creation order.
func (s *Scene) Nodes() []Handle {
	return append([]Handle(nil), s.order...)
}

// Roots returns the top-level transform nodes in creation order.
func (s *Scene) Roots() []Handle {
	var roots []Handle
	for _, h := range s.order {
		n := s.nodes[h]
		if n.parent.IsNone() && n.kind.IsTransform() {
			roots = append(roots, h)
		}
	}
	return roots
}

// Find returns the first node with the given name.
func (s *Scene) Find(name string) (Handle, bool) {
	for _, h := range s.order {
		if s.nodes[h].name == name {
			return h, true
		}
	}
	return None, false
}

func (s *Scene) Name(h Handle) string {
	if n, ok := s.nodes[h]; ok {
		return n.name
	}
	return h.String()
}

func (s *Scene) Kind(h Handle) (Kind, error) {
	n, err := s.get(h)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Parent returns the parent of h, or None for top-level nodes.
func (s *Scene) Parent(h Handle) (Handle, error) {
	n, err := s.get(h)
	if err != nil {
		return None, err
	}
	return n.parent, nil
}

// Children returns the direct children of h in order.
func (s *Scene) Children(h Handle) ([]Handle, error) {
	n, err := s.get(h)
	if err != nil {
		return nil, err
	}
	return append([]Handle(nil), n.children...), nil
}

// SetParent moves h under parent (None for world) keeping its world transform.
func (s *Scene) SetParent(h, parent Handle) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	pos, rot := s.world(n)
	if err := s.attach(n, parent); err != nil {
		return err
	}
	s.setWorld(n, pos, rot)
	s.enforcePins()
	return nil
}

// AttachLocal moves h under parent keeping its local channel values.
func (s *Scene) AttachLocal(h, parent Handle) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if err := s.attach(n, parent); err != nil {
		return err
	}
	s.enforcePins()
	return nil
}

func (s *Scene) attach(n *node, parent Handle) error {
	if parent == n.id {
		return fmt.Errorf("%w: %s under itself", ErrInvalidParent, n.name)
	}
	if !parent.IsNone() {
		p, ok := s.nodes[parent]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, parent)
		}
		for a := p; a != nil; a = s.nodes[a.parent] {
			if a.id == n.id {
				return fmt.Errorf("%w: %s would become its own ancestor", ErrInvalidParent, n.name)
			}
		}
	}
	if !n.parent.IsNone() {
		if old, ok := s.nodes[n.parent]; ok {
			old.children = remove(old.children, n.id)
		}
	}
	n.parent = parent
	if !parent.IsNone() {
		p := s.nodes[parent]
		p.children = append(p.children, n.id)
	}
	return nil
}

// Lock sets or clears the lock on a channel. Locked channels refuse writes
// through the public setters with ErrLockedChannel.
func (s *Scene) Lock(h Handle, ch Channel, locked bool) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if locked {
		n.locked[ch] = true
	} else {
		delete(n.locked, ch)
	}
	return nil
}

// Locked returns the locked channels of h.
func (s *Scene) Locked(h Handle) []Channel {
	n, ok := s.nodes[h]
	if !ok {
		return nil
	}
	var out []Channel
	for _, ch := range []Channel{ChannelTranslate, ChannelOrient, ChannelRotate, ChannelRotateAxis} {
		if n.locked[ch] {
			out = append(out, ch)
		}
	}
	return out
}

func (s *Scene) get(h Handle) (*node, error) {
	n, ok := s.nodes[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, h)
	}
	return n, nil
}

func (s *Scene) checkLock(n *node, ch Channel) error {
	if n.locked[ch] {
		return fmt.Errorf("%w: %s.%s", ErrLockedChannel, n.name, ch)
	}
	return nil
}

func remove(hs []Handle, h Handle) []Handle {
	for i, x := range hs {
		if x == h {
			return append(hs[:i], hs[i+1:]...)
		}
	}
	return hs
}
