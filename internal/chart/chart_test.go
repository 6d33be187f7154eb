package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Run("writes a non-empty PNG", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "charts", "trend.png")
		r := NewRenderer(path)

		got, err := r.Render("Revenue", map[string]float64{
			"2022": 198270,
			"2023": 211915,
			"2024": 245122,
		})

		require.NoError(t, err)
		assert.Equal(t, path, got)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("single year renders without a trend line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trend.png")
		r := NewRenderer(path)

		_, err := r.Render("Revenue", map[string]float64{"2023": 211915})

		require.NoError(t, err)
	})

	t.Run("fails on empty values", func(t *testing.T) {
		r := NewRenderer(filepath.Join(t.TempDir(), "trend.png"))

		_, err := r.Render("Revenue", nil)

		assert.Error(t, err)
	})
}
