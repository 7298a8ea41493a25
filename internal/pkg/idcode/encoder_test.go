package idcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBookRecord() BookRecord {
	return BookRecord{
		Title:           "clean code",
		AuthorID:        1,
		AuthorFirstName: "robert",
		AuthorLastName:  "martin",
		CategoryID:      2,
		CategoryName:    "software",
	}
}

func TestImagePaths(t *testing.T) {
	assert.Equal(t, filepath.Join("book_qrcodes", "clean-code.png"), BookImagePath("Clean Code"))
	assert.Equal(t, filepath.Join("students", "ada-okafor.png"), StudentImagePath("Ada", "Okafor"))
}

func TestEncodeBookProducesPNG(t *testing.T) {
	e, err := NewEncoder(t.TempDir())
	require.NoError(t, err)

	img, err := e.EncodeBook(testBookRecord())
	require.NoError(t, err)
	require.NotEmpty(t, img)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

func TestWriteBook(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEncoder(dir)
	require.NoError(t, err)

	relPath, err := e.WriteBook(testBookRecord())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("book_qrcodes", "clean-code.png"), relPath)

	_, err = os.Stat(filepath.Join(dir, relPath))
	assert.NoError(t, err)
}

func TestWriteStudent(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEncoder(dir)
	require.NoError(t, err)

	relPath, err := e.WriteStudent("ada", "okafor", StudentRecord{
		UserID:       5,
		Name:         "Ada Okafor",
		Email:        "ada@library.edu",
		Level:        300,
		MatricNumber: "eng001",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("students", "ada-okafor.png"), relPath)

	_, err = os.Stat(filepath.Join(dir, relPath))
	assert.NoError(t, err)
}

func TestRenameReplacesOldImage(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEncoder(dir)
	require.NoError(t, err)

	oldPath, err := e.WriteBook(testBookRecord())
	require.NoError(t, err)

	renamed := testBookRecord()
	renamed.Title = "the clean coder"

	newPath, err := e.Rename(oldPath, func() (string, error) {
		return e.WriteBook(renamed)
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("book_qrcodes", "the-clean-coder.png"), newPath)

	_, err = os.Stat(filepath.Join(dir, oldPath))
	assert.True(t, os.IsNotExist(err), "old image should be deleted")

	_, err = os.Stat(filepath.Join(dir, newPath))
	assert.NoError(t, err)
}

func TestRemoveMissingImageIsNoError(t *testing.T) {
	e, err := NewEncoder(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, e.Remove(filepath.Join("book_qrcodes", "never-written.png")))
}
