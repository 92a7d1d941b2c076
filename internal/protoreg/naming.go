package protoreg

import (
	"strings"
	"unicode"

	"google.golang.org/protobuf/reflect/protoreflect"
)

func nameProtoField(graphQLName string) protoreflect.Name {
	return protoreflect.Name(snakeCase(graphQLName))
}

// snakeCase converts camelCase or PascalCase to snake_case. A run of capitals
// is one word, so "pageURL" becomes "page_url" and "URLPath" "url_path".
func snakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
