package policy

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handleRe = regexp.MustCompile(`^[a-z0-9]+@developforgood\.org$`)

func TestBuildEmailFirstAndLastName(t *testing.T) {
	got := BuildEmail("Ada", "Lovelace", EmailPolicy{
		UseFirstAndLastName: true,
		Separator:           ".",
	})
	// The separator is non-alphanumeric, so it is stripped from the handle.
	assert.Equal(t, "adalovelace@developforgood.org", got)
}

func TestBuildEmailFirstNameOnly(t *testing.T) {
	got := BuildEmail("Grace", "Hopper", EmailPolicy{})
	assert.Equal(t, "grace@developforgood.org", got)
}

func TestBuildEmailStripsSpacesAndPunctuation(t *testing.T) {
	got := BuildEmail("Minh Uyen", "O'Hoang", EmailPolicy{UseFirstAndLastName: true})
	assert.Equal(t, "minhuyenohoang@developforgood.org", got)
}

func TestBuildEmailNumericSuffixRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		got := BuildEmail("Jo", "Nes", EmailPolicy{
			UseFirstAndLastName:    true,
			AddUniqueNumericSuffix: true,
		})
		require.Regexp(t, handleRe, got)
		handle := strings.TrimSuffix(got, "@developforgood.org")
		require.True(t, strings.HasPrefix(handle, "jones"), "handle %q", handle)
		suffix, err := strconv.Atoi(strings.TrimPrefix(handle, "jones"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, suffix, 10)
		assert.Less(t, suffix, 100)
	}
}

func TestBuildEmailCustomDomain(t *testing.T) {
	got := BuildEmail("Ada", "Lovelace", EmailPolicy{Domain: "@volunteer.example.org"})
	assert.Equal(t, "ada@volunteer.example.org", got)
}

func TestBuildEmailAlwaysAlphanumericHandle(t *testing.T) {
	inputs := [][2]string{
		{"Ana-María", "García"},
		{"  lee ", "min-ho"},
		{"X Æ A-12", "Musk"},
	}
	for _, in := range inputs {
		got := BuildEmail(in[0], in[1], EmailPolicy{UseFirstAndLastName: true, Separator: "_"})
		at := strings.Index(got, "@")
		require.Greater(t, at, 0, "input %v produced %q", in, got)
		assert.Regexp(t, `^[a-z0-9]+$`, strings.ToLower(got[:at]))
	}
}

func TestGeneratePasswordLengths(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"below minimum", 7, 8},
		{"minimum", 8, 8},
		{"mid", 12, 12},
		{"maximum", 64, 64},
		{"above maximum", 65, 8},
		{"zero", 0, 8},
		{"negative", -3, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GeneratePassword(tc.n)
			assert.Len(t, got, tc.want)
			assert.Regexp(t, `^[A-Za-z0-9]+$`, got)
		})
	}
}
