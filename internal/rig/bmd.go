package rig

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"joint-orient/internal/mathutil"
)

var ErrUnsupportedVersion = errors.New("rig: unsupported bmd version")

// bmdKey is the 16-byte key of the v12 chained XOR.
var bmdKey = [16]byte{
	0xD1, 0x73, 0x52, 0xF6, 0xD2, 0x9A, 0xCB, 0x27,
	0x3E, 0xAF, 0x59, 0x31, 0x37, 0xB3, 0xE7, 0xA2,
}

// Bone is one skeleton entry of a BMD file. Bind values are local to the
// parent; rotation is Euler XYZ in radians.
type Bone struct {
	Name         string
	Parent       int
	IsDummy      bool
	BindPosition [3]float64
	BindRotation [3]float64
}

// ImportBMD reads the skeleton of a BMD model as a rig document. Meshes are
// skipped. Dummy bones are dropped and their children become roots.
func ImportBMD(path string) (*Doc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", path, err)
	}
	bones, err := ParseBMD(raw)
	if err != nil {
		return nil, fmt.Errorf("rig: %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return DocFromBones(name, bones), nil
}

// DocFromBones builds a document with one joint per non-dummy bone. The bind
// rotation goes to joint orient.
func DocFromBones(name string, bones []Bone) *Doc {
	names := make([]string, len(bones))
	used := make(map[string]bool, len(bones))
	for i, b := range bones {
		n := strings.TrimSpace(b.Name)
		if n == "" || used[n] {
			n = fmt.Sprintf("bone_%02d", i)
			for k := 2; used[n]; k++ {
				n = fmt.Sprintf("bone_%02d_%d", i, k)
			}
		}
		used[n] = true
		names[i] = n
	}

	doc := &Doc{Name: name}
	for i, b := range bones {
		if b.IsDummy {
			continue
		}
		j := Joint{
			Name:      names[i],
			Translate: Vec3(b.BindPosition),
			JointOrient: Vec3{
				mathutil.Rad2Deg(b.BindRotation[0]),
				mathutil.Rad2Deg(b.BindRotation[1]),
				mathutil.Rad2Deg(b.BindRotation[2]),
			},
		}
		if b.Parent >= 0 && b.Parent < i && !bones[b.Parent].IsDummy {
			j.Parent = names[b.Parent]
		}
		doc.Joints = append(doc.Joints, j)
	}
	return doc
}

// ParseBMD decodes the bones of a BMD v10 (plain) or v12 (XOR) file.
func ParseBMD(raw []byte) ([]Bone, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, fmt.Errorf("%w: missing BMD header", ErrInvalidDoc)
	}

	var data []byte
	switch version := raw[3]; version {
	case 10:
		data = raw[4:]
	case 12:
		if len(raw) < 8 {
			return nil, fmt.Errorf("%w: truncated v12 header", ErrInvalidDoc)
		}
		size := binary.LittleEndian.Uint32(raw[4:8])
		if 8+int(size) > len(raw) {
			return nil, fmt.Errorf("%w: truncated v12 data", ErrInvalidDoc)
		}
		data = decryptXOR(raw[8 : 8+size])
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	r := &bmdReader{data: data}
	return r.bones()
}

// decryptXOR undoes the v12 chained XOR. The chain starts at 0x5E and
// follows the encrypted byte plus 0x3D.
func decryptXOR(data []byte) []byte {
	out := make([]byte, len(data))
	chain := byte(0x5E)
	for i, b := range data {
		out[i] = (b ^ bmdKey[i&15]) - chain
		chain = b + 0x3D
	}
	return out
}

type bmdReader struct {
	data []byte
	off  int
}

func (r *bmdReader) skip(n int) {
	r.off += n
	if r.off < 0 {
		r.off = 0
	}
	if r.off > len(r.data) {
		r.off = len(r.data)
	}
}

func (r *bmdReader) overrun() bool { return r.off >= len(r.data) }

func (r *bmdReader) readStr(n int) string {
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		return ""
	}
	s := r.data[r.off : r.off+n]
	r.off += n
	if i := strings.IndexByte(string(s), 0); i >= 0 {
		return string(s[:i])
	}
	return string(s)
}

func (r *bmdReader) readI16() int16 {
	if r.off+2 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.off:]))
	r.off += 2
	return v
}

func (r *bmdReader) readU16() uint16 {
	return uint16(r.readI16())
}

func (r *bmdReader) readF32() float32 {
	if r.off+4 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

func (r *bmdReader) readByte() byte {
	if r.off >= len(r.data) {
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

// Record sizes of the mesh section.
const (
	vertexSize   = 16
	normalSize   = 20
	texCoordSize = 8
	triangleSize = 64
	texPathSize  = 32
)

func (r *bmdReader) bones() ([]Bone, error) {
	_ = r.readStr(32) // model name
	meshCount := int(r.readU16())
	boneCount := int(r.readU16())
	actionCount := int(r.readU16())
	if meshCount > 100 {
		return nil, fmt.Errorf("%w: mesh count %d", ErrInvalidDoc, meshCount)
	}

	for i := 0; i < meshCount; i++ {
		nv := int(r.readI16())
		nn := int(r.readI16())
		ntc := int(r.readI16())
		nt := int(r.readI16())
		_ = r.readI16() // texture index
		if nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
			return nil, fmt.Errorf("%w: mesh %d has negative counts", ErrInvalidDoc, i)
		}
		r.skip(nv*vertexSize + nn*normalSize + ntc*texCoordSize + nt*triangleSize + texPathSize)
	}

	keys := make([]int, actionCount)
	for a := range keys {
		keys[a] = int(r.readI16())
		if keys[a] < 0 {
			return nil, fmt.Errorf("%w: action %d has %d keys", ErrInvalidDoc, a, keys[a])
		}
		if lockPos := r.readByte() > 0; lockPos {
			r.skip(keys[a] * 12)
		}
	}

	bones := make([]Bone, 0, boneCount)
	for b := 0; b < boneCount; b++ {
		if r.overrun() {
			return nil, fmt.Errorf("%w: truncated at bone %d of %d", ErrInvalidDoc, b, boneCount)
		}
		if dummy := r.readByte() > 0; dummy {
			bones = append(bones, Bone{Parent: -1, IsDummy: true})
			continue
		}
		bone := Bone{Name: r.readStr(32), Parent: int(r.readI16())}
		for a, n := range keys {
			// positions then rotations, n keys each; frame 0 of action 0 is bind pose
			for k := 0; k < n; k++ {
				p := [3]float64{float64(r.readF32()), float64(r.readF32()), float64(r.readF32())}
				if a == 0 && k == 0 {
					bone.BindPosition = p
				}
			}
			for k := 0; k < n; k++ {
				q := [3]float64{float64(r.readF32()), float64(r.readF32()), float64(r.readF32())}
				if a == 0 && k == 0 {
					bone.BindRotation = q
				}
			}
		}
		bones = append(bones, bone)
	}
	return bones, nil
}
