package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/automodel/internal/history"
)

func recordCompile(t *testing.T, db string, args ...string) string {
	t.Helper()
	full := append([]string{"compile", "-s", orderSchema, "--format", "json", "--record", db, "Shop.Order"}, args...)
	out, _ := execute(t, full...)
	resp := decode(t, out, nil)
	require.NotEmpty(t, resp.RecordID)
	return resp.RecordID
}

func TestHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	first := recordCompile(t, db, `note = "a"`)
	recordCompile(t, db, `nope = "x"`)
	third := recordCompile(t, db, `note  =  "a"`)

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "history", "list", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, first)
		assert.Contains(t, out, third)

		out, err = execute(t, "history", "list", "--db", db, "--errors", "--format", "json")
		require.NoError(t, err)
		var records []history.Record
		decode(t, out, &records)
		require.Len(t, records, 1)
		assert.Equal(t, `nope = "x"`, records[0].Filter)
	})

	t.Run("same", func(t *testing.T) {
		out, err := execute(t, "history", "same", "--db", db, "--format", "json", first)
		require.NoError(t, err)
		var records []history.Record
		decode(t, out, &records)
		require.Len(t, records, 2)
		assert.Equal(t, first, records[0].ID)
		assert.Equal(t, third, records[1].ID)
	})

	t.Run("show missing", func(t *testing.T) {
		out, err := execute(t, "history", "show", "--db", db, "--format", "json", "nope")
		require.Error(t, err)
		resp := decode(t, out, nil)
		assert.Equal(t, ErrCodeRecordNotFound, resp.Error.Code)
	})

	t.Run("no database", func(t *testing.T) {
		_, err := execute(t, "history", "list", "--db", filepath.Join(t.TempDir(), "none.db"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}
