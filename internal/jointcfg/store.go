package jointcfg

import (
	"fmt"
	"math"

	"joint-orient/internal/scene"
)

// Store is the attribute surface needed to persist a Config.
type Store interface {
	GetAttr(h scene.Handle, name string, def any) any
	SetAttr(h scene.Handle, name string, value any, t scene.AttrType) error
	HasAttr(h scene.Handle, name string) bool
	DeleteAttr(h scene.Handle, name string) error
}

// Has reports whether joint carries orientation settings.
func Has(store Store, joint scene.Handle) bool {
	return store.HasAttr(joint, AttrMarker)
}

// Read loads the settings of joint. ok is false when the joint has none.
// Individual attributes that are missing fall back to Default.
func Read(store Store, joint scene.Handle) (cfg Config, ok bool, err error) {
	if !Has(store, joint) {
		return Config{}, false, nil
	}
	values := make(map[string]int, len(attrNames))
	def := Default().Values()
	for _, name := range attrNames {
		raw := store.GetAttr(joint, name, def[name])
		v, err := asInt(raw)
		if err != nil {
			return Config{}, true, fmt.Errorf("jointcfg: %s: %w", name, err)
		}
		values[name] = v
	}
	cfg, err = FromValues(values)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// Write stores cfg on joint, creating the attributes as needed.
func Write(store Store, joint scene.Handle, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !store.HasAttr(joint, AttrMarker) {
		if err := store.SetAttr(joint, AttrMarker, 0, scene.AttrEnum); err != nil {
			return fmt.Errorf("jointcfg: write marker: %w", err)
		}
	}
	values := cfg.Values()
	for _, name := range attrNames {
		var err error
		if name == AttrActive {
			err = store.SetAttr(joint, name, cfg.Active, scene.AttrBool)
		} else {
			err = store.SetAttr(joint, name, values[name], scene.AttrEnum)
		}
		if err != nil {
			return fmt.Errorf("jointcfg: write %s: %w", name, err)
		}
	}
	return nil
}

// SetDefaults writes Default() to joint.
func SetDefaults(store Store, joint scene.Handle) error {
	return Write(store, joint, Default())
}

// SetActive toggles only the active flag of a configured joint.
func SetActive(store Store, joint scene.Handle, active bool) error {
	if !Has(store, joint) {
		return fmt.Errorf("jointcfg: %s has no orientation settings", joint)
	}
	return store.SetAttr(joint, AttrActive, active, scene.AttrBool)
}

// Remove deletes every orientation attribute from joint.
func Remove(store Store, joint scene.Handle) error {
	for _, name := range append([]string{AttrMarker}, attrNames...) {
		if !store.HasAttr(joint, name) {
			continue
		}
		if err := store.DeleteAttr(joint, name); err != nil {
			return fmt.Errorf("jointcfg: remove %s: %w", name, err)
		}
	}
	return nil
}

func asInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: %v is not a whole number", ErrInvalidValue, x)
		}
		return int(x), nil
	}
	return 0, fmt.Errorf("%w: unexpected %T", ErrInvalidValue, v)
}
