// Package jointcfg holds the per-joint orientation settings and their
// persistence as typed attributes on the joint node.
package jointcfg

import (
	"errors"
	"fmt"
)

// ErrInvalidValue reports an attribute whose value is outside its enum range.
var ErrInvalidValue = errors.New("jointcfg: invalid value")

// Attribute names as stored on the node.
const (
	AttrMarker         = "orientInfo"
	AttrAimAxis        = "aimAxis"
	AttrUpAxis         = "upAxis"
	AttrWorldUpAxis    = "worldUpAxis"
	AttrAimAt          = "aimAt"
	AttrAimUpAt        = "aimUpAt"
	AttrTriangleTop    = "triangleTop"
	AttrTriangleMid    = "triangleMid"
	AttrTriangleBottom = "triangleBottom"
	AttrActive         = "active"
)

var attrNames = []string{
	AttrAimAxis, AttrUpAxis, AttrWorldUpAxis,
	AttrAimAt, AttrAimUpAt,
	AttrTriangleTop, AttrTriangleMid, AttrTriangleBottom,
	AttrActive,
}

// Config is the orientation setup of one joint.
type Config struct {
	AimAxis     Axis
	UpAxis      Axis
	WorldUpAxis Axis

	AimAt   AimAt
	AimUpAt AimUpAt

	// Triangle corners, used only with UpTrianglePlane.
	TriangleTop    Anchor
	TriangleMid    Anchor
	TriangleBottom Anchor

	Active bool
}

// Default returns the settings written by SetDefaults.
func Default() Config {
	return Config{
		AimAxis:        AxisPosX,
		UpAxis:         AxisPosY,
		WorldUpAxis:    AxisPosY,
		AimAt:          AimLocalParent,
		AimUpAt:        UpWorld,
		TriangleTop:    AnchorParent,
		TriangleMid:    AnchorSelf,
		TriangleBottom: AnchorChild,
		Active:         true,
	}
}

// Validate checks every enum field.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
		v    int
	}{
		{AttrAimAxis, c.AimAxis.Valid(), int(c.AimAxis)},
		{AttrUpAxis, c.UpAxis.Valid(), int(c.UpAxis)},
		{AttrWorldUpAxis, c.WorldUpAxis.Valid(), int(c.WorldUpAxis)},
		{AttrAimAt, c.AimAt.Valid(), int(c.AimAt)},
		{AttrAimUpAt, c.AimUpAt.Valid(), int(c.AimUpAt)},
		{AttrTriangleTop, c.TriangleTop.Valid(), int(c.TriangleTop)},
		{AttrTriangleMid, c.TriangleMid.Valid(), int(c.TriangleMid)},
		{AttrTriangleBottom, c.TriangleBottom.Valid(), int(c.TriangleBottom)},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s=%d", ErrInvalidValue, ch.name, ch.v)
		}
	}
	return nil
}

// Values returns the settings as an attribute-name → value dictionary.
func (c Config) Values() map[string]int {
	active := 0
	if c.Active {
		active = 1
	}
	return map[string]int{
		AttrAimAxis:        int(c.AimAxis),
		AttrUpAxis:         int(c.UpAxis),
		AttrWorldUpAxis:    int(c.WorldUpAxis),
		AttrAimAt:          int(c.AimAt),
		AttrAimUpAt:        int(c.AimUpAt),
		AttrTriangleTop:    int(c.TriangleTop),
		AttrTriangleMid:    int(c.TriangleMid),
		AttrTriangleBottom: int(c.TriangleBottom),
		AttrActive:         active,
	}
}

// FromValues builds a Config from a Values dictionary. Missing keys keep
// their Default value.
func FromValues(values map[string]int) (Config, error) {
	c := Default()
	fields := map[string]*int{
		AttrAimAxis:        (*int)(&c.AimAxis),
		AttrUpAxis:         (*int)(&c.UpAxis),
		AttrWorldUpAxis:    (*int)(&c.WorldUpAxis),
		AttrAimAt:          (*int)(&c.AimAt),
		AttrAimUpAt:        (*int)(&c.AimUpAt),
		AttrTriangleTop:    (*int)(&c.TriangleTop),
		AttrTriangleMid:    (*int)(&c.TriangleMid),
		AttrTriangleBottom: (*int)(&c.TriangleBottom),
	}
	for name, v := range values {
		if name == AttrActive {
			c.Active = v != 0
			continue
		}
		f, ok := fields[name]
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown setting %q", ErrInvalidValue, name)
		}
		*f = v
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
