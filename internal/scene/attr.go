package scene

import (
	"fmt"
	"sort"
)

// AttrType is the declared type of a dynamic attribute.
type AttrType int

const (
	AttrBool AttrType = iota
	AttrInt
	AttrEnum
	AttrFloat
	AttrString
)

func (t AttrType) String() string {
	switch t {
	case AttrBool:
		return "bool"
	case AttrInt:
		return "long"
	case AttrEnum:
		return "enum"
	case AttrFloat:
		return "double"
	case AttrString:
		return "string"
	}
	return fmt.Sprintf("attrType(%d)", int(t))
}

type attribute struct {
	typ    AttrType
	value  any
	locked bool
}

// GetAttr returns the value of name on h, or def when the node or attribute is missing.
func (s *Scene) GetAttr(h Handle, name string, def any) any {
	n, ok := s.nodes[h]
	if !ok {
		return def
	}
	a, ok := n.attrs[name]
	if !ok {
		return def
	}
	return a.value
}

// SetAttr creates or updates a typed attribute. Updating an attribute with a
// different type fails with ErrAttrType; locked attributes fail with ErrLockedChannel.
func (s *Scene) SetAttr(h Handle, name string, value any, t AttrType) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	v, err := coerce(value, t)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", n.name, name, err)
	}
	if a, ok := n.attrs[name]; ok {
		if a.typ != t {
			return fmt.Errorf("%w: %s.%s is %s, not %s", ErrAttrType, n.name, name, a.typ, t)
		}
		if a.locked {
			return fmt.Errorf("%w: %s.%s", ErrLockedChannel, n.name, name)
		}
		a.value = v
		return nil
	}
	n.attrs[name] = &attribute{typ: t, value: v}
	return nil
}

func (s *Scene) HasAttr(h Handle, name string) bool {
	n, ok := s.nodes[h]
	if !ok {
		return false
	}
	_, ok = n.attrs[name]
	return ok
}

// DeleteAttr removes name from h. The attribute lock does not prevent removal.
func (s *Scene) DeleteAttr(h Handle, name string) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	if _, ok := n.attrs[name]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrAttrNotFound, n.name, name)
	}
	delete(n.attrs, name)
	return nil
}

// LockAttr sets the lock state of an existing attribute.
func (s *Scene) LockAttr(h Handle, name string, locked bool) error {
	n, err := s.get(h)
	if err != nil {
		return err
	}
	a, ok := n.attrs[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrAttrNotFound, n.name, name)
	}
	a.locked = locked
	return nil
}

// AttrNames lists the attributes of h in sorted order.
func (s *Scene) AttrNames(h Handle) []string {
	n, ok := s.nodes[h]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func coerce(value any, t AttrType) (any, error) {
	switch t {
	case AttrBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int:
			return v != 0, nil
		}
	case AttrInt, AttrEnum:
		switch v := value.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		}
	case AttrFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case AttrString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrAttrType, value, t)
}
