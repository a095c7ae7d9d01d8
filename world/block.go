package world

import (
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Type is a block's material.
type Type uint8

const (
	TypeInactive Type = iota
	TypeWater
	TypeSand
	TypeGrass
	TypeRock
	TypeIce

	numTypes
)

var typeNames = [numTypes]string{
	TypeInactive: "inactive",
	TypeWater:    "water",
	TypeSand:     "sand",
	TypeGrass:    "grass",
	TypeRock:     "rock",
	TypeIce:      "ice",
}

func (t Type) String() string {
	if t >= numTypes {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType resolves a material name as used in config files.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeInactive, errors.Errorf("unknown block type %q", name)
}

type BlockType struct {
	Type          Type
	Color         mgl32.Vec4
	IsTransparent bool
}

var (
	typeMutex sync.RWMutex
	idToType  = map[Type]*BlockType{
		TypeInactive: {Type: TypeInactive, IsTransparent: true},
		TypeWater:    {Type: TypeWater, Color: mgl32.Vec4{0.15, 0.35, 0.85, 1}, IsTransparent: true},
		TypeSand:     {Type: TypeSand, Color: mgl32.Vec4{0.86, 0.80, 0.55, 1}},
		TypeGrass:    {Type: TypeGrass, Color: mgl32.Vec4{0.30, 0.62, 0.22, 1}},
		TypeRock:     {Type: TypeRock, Color: mgl32.Vec4{0.45, 0.43, 0.42, 1}},
		TypeIce:      {Type: TypeIce, Color: mgl32.Vec4{0.90, 0.95, 1.00, 1}},
	}
)

// RegisterBlockType replaces the render attributes of a material.
// Inactive blocks never carry a color.
func RegisterBlockType(ty *BlockType) {
	if ty.Type == TypeInactive {
		ty.Color = mgl32.Vec4{}
		ty.IsTransparent = true
	}
	typeMutex.Lock()
	defer typeMutex.Unlock()
	idToType[ty.Type] = ty
}

// Block is a single voxel.
type Block struct {
	Type Type
}

func NewBlock(t Type) Block {
	return Block{Type: t}
}

func (b Block) BlockType() *BlockType {
	typeMutex.RLock()
	defer typeMutex.RUnlock()
	return idToType[b.Type]
}

func (b Block) IsActive() bool {
	return b.Type != TypeInactive
}

// 是否透明 返回true 则相邻方块的面需要绘制
func (b Block) IsTransparent() bool {
	bt := b.BlockType()
	if bt == nil {
		return true
	}
	return bt.IsTransparent
}

// Color returns the block's render color. ok is false for inactive blocks.
func (b Block) Color() (c mgl32.Vec4, ok bool) {
	if !b.IsActive() {
		return c, false
	}
	bt := b.BlockType()
	if bt == nil {
		return c, false
	}
	return bt.Color, true
}
