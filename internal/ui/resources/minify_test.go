package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinifyCSS(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("static", Stylesheet))
	require.NoError(t, err)

	out, err := MinifyCSS(src)
	require.NoError(t, err)
	assert.Less(t, len(out), len(src))
	assert.Contains(t, string(out), ".tile-grid{")
	assert.NotContains(t, string(out), "\n\n")
}
