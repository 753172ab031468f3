package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-report/storage"
	"stock-report/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard) }

func newTestStore(t *testing.T, mode storage.CommitMode) *storage.SQLStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "stock.db"), mode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
