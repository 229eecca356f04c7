package block

import "fmt"

// Type tags the content of a single voxel cell.
type Type uint8

const (
	Air Type = iota
	Grass
	Dirt
	Stone
	Sand
	Coal
)

var typeNames = [...]string{
	Air:   "air",
	Grass: "grass",
	Dirt:  "dirt",
	Stone: "stone",
	Sand:  "sand",
	Coal:  "coal",
}

// IsSolid reports whether the block occludes faces and collides.
// Every tag except Air is solid.
func (t Type) IsSolid() bool {
	return t != Air
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("block(%d)", uint8(t))
}

// ParseType returns the block tag for a lower-case name such as "stone".
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return Air, fmt.Errorf("unknown block type %q, want one of %v", name, Types())
}

// Types returns every known block tag in declaration order.
func Types() []Type {
	out := make([]Type, len(typeNames))
	for i := range typeNames {
		out[i] = Type(i)
	}
	return out
}
