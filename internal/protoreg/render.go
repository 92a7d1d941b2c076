package protoreg

import (
	"io"

	"github.com/jhump/protoreflect/v2/protoprint"
)

// Render writes the generated file as .proto source.
func Render(r *Registry, w io.Writer) error {
	pp := protoprint.Printer{}
	return pp.PrintProtoFile(r.File(), w)
}
