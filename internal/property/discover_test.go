package property

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetterNames(t *testing.T) {
	cases := []struct {
		property string
		boolean  bool
		want     []string
	}{
		{"name", false, []string{"GetName"}},
		{"active", true, []string{"IsActive", "GetActive"}},
		{"Name", false, []string{"GetName"}},
		{"état", false, []string{"GetÉtat"}},
		{"", false, []string{"Get"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, getterNames(tc.property, tc.boolean)); diff != "" {
			t.Errorf("getterNames(%q, %v) mismatch (-want +got):\n%s", tc.property, tc.boolean, diff)
		}
	}
}

func TestAncestry(t *testing.T) {
	type summary struct {
		Type        string
		Path        []int
		Public      bool
		Addressable bool
	}
	describe := func(levels []level) []summary {
		out := make([]summary, 0, len(levels))
		for _, lv := range levels {
			out = append(out, summary{lv.typ.String(), lv.path, lv.public, lv.addressable})
		}
		return out
	}

	t.Run("value target", func(t *testing.T) {
		got := describe(ancestry(reflect.TypeOf(post{})))
		want := []summary{
			{"property.post", nil, true, false},
			{"property.Base", []int{0}, true, false},
			{"property.inner", []int{1}, false, false},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("pointer target", func(t *testing.T) {
		got := describe(ancestry(reflect.TypeOf(&post{})))
		want := []summary{
			{"*property.post", nil, true, false},
			{"property.Base", []int{0}, true, true},
			{"property.inner", []int{1}, false, true},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("recursive embedding terminates", func(t *testing.T) {
		type node struct {
			*node
			Value int
		}
		got := describe(ancestry(reflect.TypeOf(node{})))
		if len(got) != 2 {
			t.Fatalf("want 2 levels, got %d: %+v", len(got), got)
		}
	})
}

func TestKeysSeparateTypesAndNames(t *testing.T) {
	a := newKey(reflect.TypeOf(Person{}), "name")
	b := newKey(reflect.TypeOf(&Person{}), "name")
	c := newKey(reflect.TypeOf(Person{}), "email")
	if a == b || a == c || b == c {
		t.Fatalf("keys collide: %v %v %v", a, b, c)
	}
	if a != newKey(reflect.TypeOf(Person{}), "name") {
		t.Fatal("same type and name must share a key")
	}
	if b.pkg != "github.com/hanpama/hostgraph/internal/property" {
		t.Fatalf("unexpected defining package %q", b.pkg)
	}
}
