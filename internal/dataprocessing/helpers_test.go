package dataprocessing

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"creditrisk/internal/config"
	"creditrisk/pkg/contracts/domain"
)

const sampleRecord = "A11 6 A34 A43 1169 A65 A75 4 A93 A101 4 A121 67 A143 A152 2 A173 1 A191 A201 1"

var sampleRecords = []string{
	sampleRecord,
	"A12 48 A32 A43 5951 A61 A73 2 A92 A101 2 A121 22 A143 A152 1 A173 1 A191 A201 2",
	"A14 12 A34 A46 2096 A61 A74 2 A93 A101 3 A121 49 A143 A152 1 A172 2 A191 A201 1",
	"A11 42 A32 A42 7882 A61 A74 2 A93 A103 4 A122 45 A143 A153 1 A173 2 A191 A201 1",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeRaw(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.data")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func defaultMappings(t *testing.T) domain.MappingTable {
	t.Helper()
	m, err := config.DefaultMappings()
	require.NoError(t, err)
	return m
}
