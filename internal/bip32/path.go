package bip32

import (
	"strconv"
	"strings"
)

// Path is a sequence of child indices, such as 44'/0/0'/348.
type Path struct {
	indices []uint32
}

func newIndex(relativeIndex uint32, hardened bool) uint32 {
	if hardened {
		return hardenedBit | relativeIndex
	}
	return relativeIndex
}

func indexFrom(spec string) (uint32, error) {
	hardened := strings.HasSuffix(spec, "'")
	spec = strings.TrimSuffix(spec, "'")

	index, err := strconv.ParseUint(spec, 10, 31)
	if err != nil {
		return 0, err
	}
	return newIndex(uint32(index), hardened), nil
}

// PathFrom parses a path of '/' separated indices, where hardened indices carry a ' suffix.
// A leading "m/" is accepted.
func PathFrom(spec string) (Path, error) {
	spec = strings.TrimPrefix(strings.TrimPrefix(spec, "m"), "/")
	if len(spec) == 0 {
		return Path{}, nil
	}

	var indices []uint32
	for _, s := range strings.Split(spec, "/") {
		i, err := indexFrom(s)
		if err != nil {
			return Path{}, err
		}
		indices = append(indices, i)
	}
	return Path{indices: indices}, nil
}

// Indices returns a copy of the indices of p.
func (p Path) Indices() []uint32 {
	return append([]uint32(nil), p.indices...)
}

// Hardened returns true if some index of p is hardened.
func (p Path) Hardened() bool {
	for _, i := range p.indices {
		if i&hardenedBit != 0 {
			return true
		}
	}
	return false
}
