package summarize

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

const export = "Receipt,ID,Customer,Customer Type,Date / Time,CSR,Office,Type,Company,Policy,Financed,Reference #,Method,Premium,Fee,Total\n" +
	"100,C1,Jane Roe,Personal,3/14/2025 9:15 AM,Maria Lopez,CA010,NEW,Broker Fee,P1,No,,Cash,500,50,550\n" +
	"101,C2,John Doe,Personal,3/14/2025 9:30 AM,Maria Lopez,CA010,NEW,Broker Fee,P2,No,,Cash,200,30,230\n" +
	"102,C3,Ann Lee,Personal,3/15/2025 9:30 AM,Maria Lopez,CA010,NEW,Broker Fee,P3,No,,Cash,900,90,990\n"

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0600))
	return path
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "summarize", Cmd.Use)
	assert.Contains(t, Cmd.Long, "Example")
	for _, name := range []string{"expenses", "cash", "correction", "commissionable"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestRun(t *testing.T) {
	logger := logging.NewMockLogger()
	c, err := common.NewMemoryContainer(context.Background(), logger)
	require.NoError(t, err)
	input := writeExport(t)

	tests := []struct {
		name    string
		opts    Options
		want    []string
		wantErr bool
	}{
		{
			name: "one day",
			opts: Options{Input: input, From: "2025-03-14", To: "2025-03-14", Format: "csv"},
			want: []string{"nb_rw_count,2\n", "nb_rw_corp_fee,40.00\n"},
		},
		{
			name: "commissionable view drops corrected receipts",
			opts: Options{Input: input, From: "2025-03-14", To: "2025-03-14", Format: "csv",
				Corrections: []string{"101"}, Commissionable: true},
			want: []string{"nb_rw_count,1\n"},
		},
		{
			name:    "missing file",
			opts:    Options{Input: filepath.Join(t.TempDir(), "nope.csv"), Format: "csv"},
			wantErr: true,
		},
		{
			name:    "inverted range",
			opts:    Options{Input: input, From: "2025-03-15", To: "2025-03-14", Format: "csv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Run(c, tt.opts, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestRun_LogsCashDifference(t *testing.T) {
	logger := logging.NewMockLogger()
	c, err := common.NewMemoryContainer(context.Background(), logger)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Run(c, Options{Input: writeExport(t), From: "2025-03-14", To: "2025-03-14", Cash: "780", Format: "json"}, &out))
	assert.True(t, logger.HasEntry("INFO", "Cash difference"))
	assert.Contains(t, out.String(), `"trust_deposit"`)
}
