package protoreg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldNumbers(t *testing.T) {
	names := []string{"name", "email", "is_adult", "friends", "best"}
	first := fieldNumbers(names)
	require.Len(t, first, len(names))

	seen := map[int]bool{}
	for i, n := range first {
		require.GreaterOrEqual(t, n, 1, names[i])
		require.LessOrEqual(t, n, maxFieldNumber, names[i])
		require.False(t, n >= reservedStart && n <= reservedEnd, names[i])
		require.False(t, seen[n], "duplicate number for %s", names[i])
		seen[n] = true
	}

	reordered := fieldNumbers([]string{"best", "friends", "is_adult", "email", "name"})
	require.Equal(t, first[0], reordered[4], "numbers follow names, not positions")
	require.Equal(t, first[4], reordered[0])

	require.Equal(t, first[:2], fieldNumbers([]string{"name", "email"}))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"name":        "name",
		"displayName": "display_name",
		"isAdult":     "is_adult",
		"ID":          "id",
		"pageURL":     "page_url",
		"URLPath":     "url_path",
		"isbn13":      "isbn13",
	}
	for in, want := range cases {
		require.Equal(t, want, snakeCase(in), in)
	}
}
