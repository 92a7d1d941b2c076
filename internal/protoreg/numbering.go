package protoreg

import (
	"hash/fnv"
	"sort"

	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Field tags are derived from field names so that reordering or adding fields
// in the schema never renumbers existing ones.
const (
	maxFieldNumber = 31767
	reservedStart  = 19000
	reservedEnd    = 19999
)

func allocateFieldNumbers(fieldBuilders []*protobuilder.FieldBuilder) {
	names := make([]string, len(fieldBuilders))
	for i, fb := range fieldBuilders {
		names[i] = string(fb.Name())
	}
	for i, n := range fieldNumbers(names) {
		fieldBuilders[i].SetNumber(protoreflect.FieldNumber(n))
	}
}

// fieldNumbers assigns FNV-1a(name)%maxFieldNumber+1 to each name, probing
// linearly past collisions and the reserved range. Names are processed in
// sorted order so collision resolution is stable.
func fieldNumbers(names []string) []int {
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })

	out := make([]int, len(names))
	used := make(map[int]bool, len(names))
	for _, idx := range order {
		n := int(fnv32(names[idx])%maxFieldNumber) + 1
		for used[n] || (n >= reservedStart && n <= reservedEnd) {
			n++
			if n > maxFieldNumber {
				n = 1
			}
		}
		used[n] = true
		out[idx] = n
	}
	return out
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
