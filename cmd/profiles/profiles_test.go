package profiles

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	c, err := common.NewMemoryContainer(ctx, logging.NewMockLogger())
	require.NoError(t, err)
	dir := t.TempDir()

	good := filepath.Join(dir, "agents.csv")
	require.NoError(t, os.WriteFile(good, []byte("email,full_name\nmaria@agency.com,Maria Lopez\nrobert@agency.com,Robert Tate\n"), 0600))

	var out bytes.Buffer
	require.NoError(t, Seed(ctx, c, good, &out))
	assert.Equal(t, "seeded 2 profiles\n", out.String())

	stored, err := c.GetStore().ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("email,full_name\nnot-an-email,Nobody\n"), 0600))
	assert.Error(t, Seed(ctx, c, bad, &bytes.Buffer{}))
}
