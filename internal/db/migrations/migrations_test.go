package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}

func TestInitDeclaresExclusionConstraints(t *testing.T) {
	raw, err := fs.ReadFile(FS, "000001_init.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	assert.Contains(t, sql, "bookings_no_overlap EXCLUDE USING gist")
	assert.Contains(t, sql, "WHERE (status IN ('pending', 'confirmed'))")
	assert.Contains(t, sql, "ux_slots_provider_start UNIQUE (provider_id, start_at)")
}
