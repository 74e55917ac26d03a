package jointcfg

import (
	"fmt"

	"joint-orient/internal/mathutil"
)

// Axis is a signed local axis, or AxisZero to disable the axis.
type Axis int

const (
	AxisPosX Axis = iota
	AxisPosY
	AxisPosZ
	AxisNegX
	AxisNegY
	AxisNegZ
	AxisZero
)

var axisNames = [...]string{"+X", "+Y", "+Z", "-X", "-Y", "-Z", "zero"}

var axisVectors = [...]mathutil.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{-1, 0, 0},
	{0, -1, 0},
	{0, 0, -1},
	{0, 0, 0},
}

func (a Axis) Valid() bool { return a >= AxisPosX && a <= AxisZero }

// Vector returns the unit vector of the axis; AxisZero yields (0,0,0).
func (a Axis) Vector() mathutil.Vec3 {
	if !a.Valid() {
		return mathutil.Vec3{}
	}
	return axisVectors[a]
}

func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis accepts "+X", "x", "-z", "zero", ...
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X", "+x":
		return AxisPosX, nil
	case "y", "Y", "+y":
		return AxisPosY, nil
	case "z", "Z", "+z":
		return AxisPosZ, nil
	case "-x":
		return AxisNegX, nil
	case "-y":
		return AxisNegY, nil
	case "-z":
		return AxisNegZ, nil
	case "none", "0":
		return AxisZero, nil
	}
	for i, n := range axisNames {
		if n == s {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("%w: axis %q", ErrInvalidValue, s)
}

// AimAt selects where the aim axis points.
type AimAt int

const (
	AimWorldX AimAt = iota
	AimWorldY
	AimWorldZ
	AimChild
	AimParent
	AimLocalParent
)

var aimAtNames = [...]string{"worldX", "worldY", "worldZ", "child", "parent", "localParent"}

func (a AimAt) Valid() bool { return a >= AimWorldX && a <= AimLocalParent }

func (a AimAt) String() string { return enumName(aimAtNames[:], int(a), "aimAt") }

func ParseAimAt(s string) (AimAt, error) {
	i, err := parseEnum(aimAtNames[:], s, "aimAt")
	return AimAt(i), err
}

// AimUpAt selects where the up axis points.
type AimUpAt int

const (
	UpWorld AimUpAt = iota
	UpParentRotate
	UpChildPosition
	UpTrianglePlane
	UpSecondChildPosition
)

var aimUpAtNames = [...]string{"world", "parentRotate", "childPosition", "trianglePlane", "secondChildPosition"}

func (a AimUpAt) Valid() bool { return a >= UpWorld && a <= UpSecondChildPosition }

func (a AimUpAt) String() string { return enumName(aimUpAtNames[:], int(a), "aimUpAt") }

func ParseAimUpAt(s string) (AimUpAt, error) {
	if s == "2ndChildPosition" {
		return UpSecondChildPosition, nil
	}
	i, err := parseEnum(aimUpAtNames[:], s, "aimUpAt")
	return AimUpAt(i), err
}

// Anchor is a hierarchy role used as a triangle-plane corner.
type Anchor int

const (
	AnchorGrandparent Anchor = iota
	AnchorParent
	AnchorSelf
	AnchorChild
	AnchorGrandchild
)

var anchorNames = [...]string{"grandparent", "parent", "self", "child", "grandchild"}

func (a Anchor) Valid() bool { return a >= AnchorGrandparent && a <= AnchorGrandchild }

func (a Anchor) String() string { return enumName(anchorNames[:], int(a), "anchor") }

func ParseAnchor(s string) (Anchor, error) {
	if s == "joint" {
		return AnchorSelf, nil
	}
	i, err := parseEnum(anchorNames[:], s, "anchor")
	return Anchor(i), err
}

func enumName(names []string, i int, kind string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func parseEnum(names []string, s, kind string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrInvalidValue, kind, s)
}
