package block

import "github.com/go-gl/mathgl/mgl32"

// Face is one of the six axis-aligned sides of a block.
type Face uint8

const (
	Front  Face = iota // +Z
	Back               // -Z
	Left               // -X
	Right              // +X
	Top                // +Y
	Bottom             // -Y
)

// FaceCount is the number of faces on a block.
const FaceCount = 6

// AllFaces lists the faces in emission order.
var AllFaces = [FaceCount]Face{Front, Back, Left, Right, Top, Bottom}

// Faces is a bit set of visible faces.
type Faces uint8

// Has reports whether f is in the set.
func (fs Faces) Has(f Face) bool {
	return fs&(1<<f) != 0
}

// With returns the set with f added.
func (fs Faces) With(f Face) Faces {
	return fs | 1<<f
}

// Count returns the number of faces in the set.
func (fs Faces) Count() int {
	n := 0
	for _, f := range AllFaces {
		if fs.Has(f) {
			n++
		}
	}
	return n
}

// Offset returns the unit step from a block to the neighbour across f.
func (f Face) Offset() (dx, dy, dz int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

// Normal returns the outward normal of f.
func (f Face) Normal() mgl32.Vec3 {
	return faceNormals[f]
}

// Vertices returns the four unit-cube corners of f, counter-clockwise
// when seen from outside the block.
func (f Face) Vertices() [4]mgl32.Vec3 {
	return faceVertices[f]
}

func (f Face) String() string {
	switch f {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

// QuadIndices triangulates a face quad into two triangles.
var QuadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

var faceOffsets = [FaceCount][3]int{
	Front:  {0, 0, 1},
	Back:   {0, 0, -1},
	Left:   {-1, 0, 0},
	Right:  {1, 0, 0},
	Top:    {0, 1, 0},
	Bottom: {0, -1, 0},
}

var faceNormals = [FaceCount]mgl32.Vec3{
	Front:  {0, 0, 1},
	Back:   {0, 0, -1},
	Left:   {-1, 0, 0},
	Right:  {1, 0, 0},
	Top:    {0, 1, 0},
	Bottom: {0, -1, 0},
}

var faceVertices = [FaceCount][4]mgl32.Vec3{
	Front: {
		{0, 0, 1}, {1, 0, 1},
		{1, 1, 1}, {0, 1, 1},
	},
	Back: {
		{1, 0, 0}, {0, 0, 0},
		{0, 1, 0}, {1, 1, 0},
	},
	Left: {
		{0, 0, 0}, {0, 0, 1},
		{0, 1, 1}, {0, 1, 0},
	},
	Right: {
		{1, 0, 1}, {1, 0, 0},
		{1, 1, 0}, {1, 1, 1},
	},
	Top: {
		{0, 1, 1}, {1, 1, 1},
		{1, 1, 0}, {0, 1, 0},
	},
	Bottom: {
		{0, 0, 0}, {1, 0, 0},
		{1, 0, 1}, {0, 0, 1},
	},
}
