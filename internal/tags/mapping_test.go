package tags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	require.Greater(t, m.Len(), 50)

	tags, ok := m.Lookup("React")
	require.True(t, ok)
	require.Equal(t, []string{"react", "components", "jsx", "hooks"}, tags)

	_, ok = m.Lookup("not-a-framework")
	require.False(t, ok)

	for _, name := range m.Frameworks() {
		tags, _ := m.Lookup(name)
		require.NotEmpty(t, tags, name)
		for _, tag := range tags {
			require.True(t, IsWellFormed(tag), "%s maps to malformed tag %q", name, tag)
		}
	}
}

func TestMapping_LookupReturnsCopy(t *testing.T) {
	m := DefaultMapping()

	tags, _ := m.Lookup("django")
	tags[0] = "mutated"

	again, _ := m.Lookup("django")
	require.Equal(t, "django", again[0])
}

func TestNewMapping_Normalizes(t *testing.T) {
	m := NewMapping(map[string][]string{
		"  HTMX ": {"HTMX", "htmx", "Hyper_Media", ""},
		"":        {"ignored"},
	})

	require.Equal(t, 1, m.Len())
	require.Equal(t, []string{"htmx"}, m.Frameworks())

	tags, ok := m.Lookup("htmx")
	require.True(t, ok)
	require.Equal(t, []string{"htmx", "hyper-media"}, tags)

	require.True(t, m.Contains("hyper-media"))
	require.False(t, m.Contains("ignored"))
	require.Equal(t, []string{"htmx", "hyper-media"}, m.Vocabulary())
}

func TestMapping_Merge(t *testing.T) {
	base := NewMapping(map[string][]string{
		"react": {"react", "components"},
		"vue":   {"vue"},
	})

	merged := base.Merge(map[string][]string{
		"React": {"react", "server-components"},
		"htmx":  {"htmx"},
	})

	tags, _ := merged.Lookup("react")
	require.Equal(t, []string{"react", "server-components"}, tags)
	require.Equal(t, []string{"htmx", "react", "vue"}, merged.Frameworks())

	original, _ := base.Lookup("react")
	require.Equal(t, []string{"react", "components"}, original)
}

func TestLoadMapping(t *testing.T) {
	entries, err := LoadMapping(strings.NewReader(`
htmx: [htmx, hypermedia]
react:
  - react
  - server-components
`))
	require.NoError(t, err)
	require.Equal(t, map[string][]string{
		"htmx":  {"htmx", "hypermedia"},
		"react": {"react", "server-components"},
	}, entries)

	entries, err = LoadMapping(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = LoadMapping(strings.NewReader("react: {not: a list}"))
	require.Error(t, err)

	_, err = LoadMapping(strings.NewReader(`"  ": [x]`))
	require.Error(t, err)
}
