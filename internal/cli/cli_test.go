package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/wordbox/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_TYPE", "")

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--db", db, "--env", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func TestAddListAndRemove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "words.db")

	out, err := run(t, db, "add", "apple", "سیب")
	require.NoError(t, err)
	assert.Equal(t, "added 1: apple - سیب\n", out)

	out, err = run(t, db, "add", "ice", "cream", "بستنی")
	require.NoError(t, err)
	assert.Contains(t, out, "ice - cream بستنی")

	_, err = run(t, db, "add", "apple", "سیب")
	assert.Error(t, err, "duplicates are rejected")

	out, err = run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "apple\tسیب\tbox 1")
	assert.Contains(t, out, "2 words")

	out, err = run(t, db, "list", "app")
	require.NoError(t, err)
	assert.Contains(t, out, "1 words")

	out, err = run(t, db, "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1\n", out)

	_, err = run(t, db, "rm", "1")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, db, "rm", "zero")
	assert.ErrorContains(t, err, "invalid word id")
}

func TestEdit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "words.db")

	_, err := run(t, db, "add", "house", "خانه")
	require.NoError(t, err)
	_, err = run(t, db, "add", "car", "ماشین")
	require.NoError(t, err)

	out, err := run(t, db, "edit", "1", "home", "خانه", "گرم")
	require.NoError(t, err)
	assert.Equal(t, "updated 1: home - خانه گرم\n", out)

	_, err = run(t, db, "edit", "2", "home", "ماشین")
	assert.ErrorIs(t, err, database.ErrDuplicateWord)

	_, err = run(t, db, "edit", "2", " ", "ماشین")
	assert.ErrorIs(t, err, database.ErrEmptyWord)

	_, err = run(t, db, "edit", "9", "ghost", "روح")
	assert.ErrorContains(t, err, "not found")

	out, err = run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "home\tخانه گرم\tbox 1")
	assert.Contains(t, out, "car\tماشین\tbox 1")
}

func TestReviewLearnForget(t *testing.T) {
	db := filepath.Join(t.TempDir(), "words.db")

	out, err := run(t, db, "review")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to review")

	_, err = run(t, db, "add", "window", "پنجره")
	require.NoError(t, err)
	_, err = run(t, db, "add", "door", "در")
	require.NoError(t, err)

	out, err = run(t, db, "forget", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "door: box 1")

	out, err = run(t, db, "review")
	require.NoError(t, err)
	assert.Contains(t, out, "due: 2 (high priority 1, normal 1, skipped overall 1)")
	assert.Contains(t, out, "next: 2 door (box 1)")

	out, err = run(t, db, "learn", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "door: box 2")

	out, err = run(t, db, "review")
	require.NoError(t, err)
	assert.Contains(t, out, "next: 1 window")

	_, err = run(t, db, "learn", "99")
	assert.ErrorContains(t, err, "not found")
}

func TestImportAndReport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "words.db")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"English", "Persian"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"sun", "خورشید"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"moon", "ماه"}))
	path := filepath.Join(dir, "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := run(t, db, "import", path)
	require.NoError(t, err)
	assert.Equal(t, "processed 2, added 2, skipped 0\n", out)

	out, err = run(t, db, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Box 1: 2")
	assert.Contains(t, out, "Correct: 0")

	_, err = run(t, db, "import", filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestBotRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")

	_, err := run(t, filepath.Join(t.TempDir(), "words.db"), "bot")
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
}
