package filestore

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/config"
	"procurement/internal/models"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := NewStore(config.FileStoreConfig{Dir: t.TempDir(), MaxFileSize: maxSize}, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t, 1024)

	data := []byte("col1,col2\n1,2\n")
	stored, err := store.Save(data, "orders.csv", "excel-requests")
	require.NoError(t, err)
	assert.EqualValues(t, len(data), stored.Size)
	assert.True(t, strings.HasSuffix(stored.Name, ".csv"), "stored name keeps the extension")
	assert.NotContains(t, stored.Name, "orders", "client-supplied names never reach the disk")

	got, err := store.Get(stored.Name, "excel-requests")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// same original name saved twice yields distinct files
	again, err := store.Save(data, "orders.csv", "excel-requests")
	require.NoError(t, err)
	assert.NotEqual(t, stored.Name, again.Name)
}

func TestSaveValidation(t *testing.T) {
	store := newTestStore(t, 10)

	_, err := store.Save([]byte("0123456789!"), "big.xlsx", "excel-requests")
	assert.ErrorIs(t, err, models.ErrFileTooLarge)

	_, err = store.Save([]byte("x"), "report.pdf", "excel-requests")
	assert.ErrorIs(t, err, models.ErrFileType)

	_, err = store.Save([]byte("x"), "noextension", "excel-requests")
	assert.ErrorIs(t, err, models.ErrFileType)

	// extension matching is case-insensitive
	_, err = store.Save([]byte("x"), "REPORT.XLSX", "excel-requests")
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, 1024)

	stored, err := store.Save([]byte("x"), "file.xls", "excel-offers")
	require.NoError(t, err)

	require.NoError(t, store.Delete(stored.Name, "excel-offers"))

	_, err = store.Get(stored.Name, "excel-offers")
	assert.Error(t, err)

	// deleting a missing file is a no-op
	assert.NoError(t, store.Delete(stored.Name, "excel-offers"))
	assert.NoError(t, store.Delete("never-existed.csv", "excel-offers"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("a.xlsx"))
	assert.Equal(t, "application/vnd.ms-excel", ContentType("a.xls"))
	assert.Equal(t, "text/csv", ContentType("a.CSV"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
