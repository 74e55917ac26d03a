package rig

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// bmdBody writes one mesh, one action with a single key and three bones:
// a root, a dummy and a child of the root.
func bmdBody(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	name := func(s string) {
		b := make([]byte, 32)
		copy(b, s)
		buf.Write(b)
	}

	name("Player")
	w([3]uint16{1, 3, 1})
	w([5]int16{2, 1, 1, 1, 0})
	buf.Write(make([]byte, 2*vertexSize+normalSize+texCoordSize+triangleSize+texPathSize))

	w(int16(1))
	buf.WriteByte(0)

	buf.WriteByte(0)
	name("Bip01")
	w(int16(-1))
	w([3]float32{1, 2, 3})
	w([3]float32{0, 0, 0})

	buf.WriteByte(1)

	buf.WriteByte(0)
	name("Bip01 Spine")
	w(int16(0))
	w([3]float32{0, 10, 0})
	w([3]float32{0, 0, float32(math.Pi / 2)})
	return buf.Bytes()
}

func encryptXOR(data []byte) []byte {
	out := make([]byte, len(data))
	chain := byte(0x5E)
	for i, b := range data {
		out[i] = (b + chain) ^ bmdKey[i&15]
		chain = out[i] + 0x3D
	}
	return out
}

func checkBones(t *testing.T, bones []Bone) {
	t.Helper()
	if len(bones) != 3 {
		t.Fatalf("got %d bones, want 3", len(bones))
	}
	if bones[0].Name != "Bip01" || bones[0].Parent != -1 || bones[0].BindPosition != [3]float64{1, 2, 3} {
		t.Fatalf("root bone = %+v", bones[0])
	}
	if !bones[1].IsDummy {
		t.Fatalf("bone 1 should be a dummy: %+v", bones[1])
	}
	spine := bones[2]
	if spine.Name != "Bip01 Spine" || spine.Parent != 0 || math.Abs(spine.BindRotation[2]-math.Pi/2) > 1e-6 {
		t.Fatalf("spine bone = %+v", spine)
	}
}

func TestParseBMDv10(t *testing.T) {
	bones, err := ParseBMD(append([]byte("BMD\x0a"), bmdBody(t)...))
	if err != nil {
		t.Fatalf("ParseBMD: %v", err)
	}
	checkBones(t, bones)
}

func TestParseBMDv12(t *testing.T) {
	body := bmdBody(t)
	raw := []byte("BMD\x0c")
	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(body)))
	raw = append(raw, encryptXOR(body)...)
	bones, err := ParseBMD(raw)
	if err != nil {
		t.Fatalf("ParseBMD: %v", err)
	}
	checkBones(t, bones)
}

func TestParseBMDErrors(t *testing.T) {
	if _, err := ParseBMD([]byte("BMD\x0f\x00\x00\x00\x00")); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("v15: %v", err)
	}
	if _, err := ParseBMD([]byte("PNG\x0a")); !errors.Is(err, ErrInvalidDoc) {
		t.Errorf("bad magic: %v", err)
	}
	body := bmdBody(t)
	if _, err := ParseBMD(append([]byte("BMD\x0a"), body[:len(body)-30]...)); err != nil {
		// a short final bone still parses; only missing bones are an error
		t.Errorf("short tail: %v", err)
	}
	if _, err := ParseBMD(append([]byte("BMD\x0a"), body[:60]...)); !errors.Is(err, ErrInvalidDoc) {
		t.Errorf("truncated: %v", err)
	}
}

func TestDocFromBones(t *testing.T) {
	bones := []Bone{
		{Name: "root", Parent: -1},
		{Parent: -1, IsDummy: true},
		{Name: "root", Parent: 0, BindRotation: [3]float64{0, math.Pi, 0}},
		{Name: "tip", Parent: 1},
	}
	doc := DocFromBones("x", bones)
	if len(doc.Joints) != 3 {
		t.Fatalf("joints = %+v", doc.Joints)
	}
	if doc.Joints[1].Name != "bone_02" || doc.Joints[1].Parent != "root" {
		t.Fatalf("duplicate name not renamed: %+v", doc.Joints[1])
	}
	if math.Abs(doc.Joints[1].JointOrient[1]-180) > 1e-9 {
		t.Fatalf("orient = %v, want 180° about Y", doc.Joints[1].JointOrient)
	}
	if doc.Joints[2].Parent != "" {
		t.Fatalf("child of a dummy should be a root, got parent %q", doc.Joints[2].Parent)
	}
}

func TestParseBMDNegativeKeys(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 32))
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	_ = binary.Write(&buf, binary.LittleEndian, int16(-100))
	buf.WriteByte(1) // locked positions follow
	buf.WriteByte(0)
	buf.Write(make([]byte, 64))

	bones, err := ParseBMD(append([]byte("BMD\x0a"), buf.Bytes()...))
	if !errors.Is(err, ErrInvalidDoc) {
		t.Fatalf("bones %+v, err %v; want ErrInvalidDoc", bones, err)
	}
}

func TestDocFromBonesFallbackCollision(t *testing.T) {
	bones := []Bone{
		{Name: "bone_01", Parent: -1},
		{Name: "", Parent: 0},
		{Name: "bone_01", Parent: 0},
	}
	doc := DocFromBones("x", bones)
	if err := doc.Validate(); err != nil {
		t.Fatalf("generated names collide: %v", err)
	}
	if doc.Joints[1].Name != "bone_01_2" || doc.Joints[2].Name != "bone_02" {
		t.Fatalf("names = %q, %q", doc.Joints[1].Name, doc.Joints[2].Name)
	}
	if _, err := Build(doc); err != nil {
		t.Fatalf("Build: %v", err)
	}
}
