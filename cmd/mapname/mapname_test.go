package mapname

import (
	"bytes"
	"context"
	"testing"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	defer func() { list = false }()

	list = false
	assert.Error(t, Cmd.Args(&cobra.Command{}, []string{"Bobby T"}))
	assert.NoError(t, Cmd.Args(&cobra.Command{}, []string{"Bobby T", "robert@agency.com"}))

	list = true
	assert.NoError(t, Cmd.Args(&cobra.Command{}, nil))
	assert.Error(t, Cmd.Args(&cobra.Command{}, []string{"x"}))
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	c, err := common.NewMemoryContainer(ctx, logging.NewMockLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Save(ctx, c, " Bobby T ", "Robert@Agency.com", &out))
	assert.Equal(t, "Bobby T -> robert@agency.com\n", out.String())

	assert.Error(t, Save(ctx, c, "Bobby T", "not-an-email", &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, List(ctx, c, &out))
	assert.Contains(t, out.String(), "CSR NAME")
	assert.Contains(t, out.String(), "robert@agency.com")
}
