// Package rig reads and writes skeleton documents and turns them into scenes.
package rig

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"joint-orient/internal/jointcfg"
)

var ErrInvalidDoc = errors.New("rig: invalid document")

// Vec3 is a yaml triple. Rotations are Euler XYZ in degrees.
type Vec3 [3]float64

// IsZero lets yaml omit all-zero channels.
func (v Vec3) IsZero() bool { return v == Vec3{} }

// Doc is a rig document.
type Doc struct {
	Name   string  `yaml:"name,omitempty"`
	Joints []Joint `yaml:"joints"`
}

// Joint is one node of a rig document. Parent refers to another joint by name.
type Joint struct {
	Name        string   `yaml:"name"`
	Parent      string   `yaml:"parent,omitempty"`
	Kind        string   `yaml:"kind,omitempty"`
	Translate   Vec3     `yaml:"translate,flow,omitempty"`
	JointOrient Vec3     `yaml:"jointOrient,flow,omitempty"`
	Rotate      Vec3     `yaml:"rotate,flow,omitempty"`
	RotateAxis  Vec3     `yaml:"rotateAxis,flow,omitempty"`
	Locked      []string `yaml:"locked,flow,omitempty"`
	Orient      *Orient  `yaml:"orient,omitempty"`
}

// Orient holds orientation settings by name. Empty fields take the default.
type Orient struct {
	AimAxis        string `yaml:"aimAxis,omitempty"`
	UpAxis         string `yaml:"upAxis,omitempty"`
	WorldUpAxis    string `yaml:"worldUpAxis,omitempty"`
	AimAt          string `yaml:"aimAt,omitempty"`
	AimUpAt        string `yaml:"aimUpAt,omitempty"`
	TriangleTop    string `yaml:"triangleTop,omitempty"`
	TriangleMid    string `yaml:"triangleMid,omitempty"`
	TriangleBottom string `yaml:"triangleBottom,omitempty"`
	Active         *bool  `yaml:"active,omitempty"`
}

// Config converts o to typed settings.
func (o Orient) Config() (jointcfg.Config, error) {
	cfg := jointcfg.Default()
	var err error
	set := func(s string, parse func(string) error) {
		if err == nil && s != "" {
			err = parse(s)
		}
	}
	set(o.AimAxis, func(s string) (e error) { cfg.AimAxis, e = jointcfg.ParseAxis(s); return })
	set(o.UpAxis, func(s string) (e error) { cfg.UpAxis, e = jointcfg.ParseAxis(s); return })
	set(o.WorldUpAxis, func(s string) (e error) { cfg.WorldUpAxis, e = jointcfg.ParseAxis(s); return })
	set(o.AimAt, func(s string) (e error) { cfg.AimAt, e = jointcfg.ParseAimAt(s); return })
	set(o.AimUpAt, func(s string) (e error) { cfg.AimUpAt, e = jointcfg.ParseAimUpAt(s); return })
	set(o.TriangleTop, func(s string) (e error) { cfg.TriangleTop, e = jointcfg.ParseAnchor(s); return })
	set(o.TriangleMid, func(s string) (e error) { cfg.TriangleMid, e = jointcfg.ParseAnchor(s); return })
	set(o.TriangleBottom, func(s string) (e error) { cfg.TriangleBottom, e = jointcfg.ParseAnchor(s); return })
	if err != nil {
		return jointcfg.Config{}, err
	}
	if o.Active != nil {
		cfg.Active = *o.Active
	}
	return cfg, nil
}

// OrientFromConfig is the inverse of Orient.Config. Every field is written.
func OrientFromConfig(cfg jointcfg.Config) *Orient {
	active := cfg.Active
	return &Orient{
		AimAxis:        cfg.AimAxis.String(),
		UpAxis:         cfg.UpAxis.String(),
		WorldUpAxis:    cfg.WorldUpAxis.String(),
		AimAt:          cfg.AimAt.String(),
		AimUpAt:        cfg.AimUpAt.String(),
		TriangleTop:    cfg.TriangleTop.String(),
		TriangleMid:    cfg.TriangleMid.String(),
		TriangleBottom: cfg.TriangleBottom.String(),
		Active:         &active,
	}
}

// Parse decodes a rig document.
func Parse(data []byte) (*Doc, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDoc)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rig: decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a rig document from path.
func Load(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rig: %s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes doc as yaml.
func (d *Doc) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("rig: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("rig: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes doc to path.
func Save(path string, doc *Doc) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("rig: write %s: %w", path, err)
	}
	return nil
}

// Validate checks names and parent references. Cycles are caught by Build.
func (d *Doc) Validate() error {
	seen := make(map[string]bool, len(d.Joints))
	for i, j := range d.Joints {
		if j.Name == "" {
			return fmt.Errorf("%w: joint %d has no name", ErrInvalidDoc, i)
		}
		if seen[j.Name] {
			return fmt.Errorf("%w: duplicate joint %q", ErrInvalidDoc, j.Name)
		}
		seen[j.Name] = true
	}
	for _, j := range d.Joints {
		if j.Parent != "" && !seen[j.Parent] {
			return fmt.Errorf("%w: %s: unknown parent %q", ErrInvalidDoc, j.Name, j.Parent)
		}
	}
	return nil
}
