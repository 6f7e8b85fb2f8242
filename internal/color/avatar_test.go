package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForUser_Deterministic(t *testing.T) {
	first := ForUser("user_abc123")
	second := ForUser("user_abc123")
	assert.Equal(t, first, second)
}

func TestForUser_HexFormat(t *testing.T) {
	hexColor := regexp.MustCompile(`^#[0-9A-F]{6}$`)

	for _, id := range []string{"", "user_1", "user_2", "a-very-long-user-identifier"} {
		assert.Regexp(t, hexColor, ForUser(id), "id %q", id)
	}
}

func TestForUser_SpreadsAcrossPalette(t *testing.T) {
	seen := map[string]bool{}
	ids := []string{"user_a", "user_b", "user_c", "user_d", "user_e", "user_f", "user_g", "user_h"}
	for _, id := range ids {
		seen[ForUser(id)] = true
	}

	// FNV over distinct IDs should not collapse everything onto one color.
	assert.Greater(t, len(seen), 2)
}
