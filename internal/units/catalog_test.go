package units

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	r := Catalog(regexp.MustCompile(`FLAG\{[^}]*\}`))

	assert.Equal(t, []string{
		"base64_decode", "base85_decode", "flag_scan", "hex_decode", "rot13",
	}, r.Names())

	// The scanner is registered first so it wins matching order within a
	// priority tier.
	units := r.Units()
	require.NotEmpty(t, units)
	assert.Equal(t, "flag_scan", units[0].Name())
}
