package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/storage"
)

func newStore(t *testing.T) (*storage.FileStore, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFileStore(root)
	require.NoError(t, err)
	return fs, root
}

func TestStageAndPromote(t *testing.T) {
	fs, root := newStore(t)

	staged, err := fs.StagePhoto(strings.NewReader("jpeg-bytes"), "facade.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(staged, ".jpg"), "extension should be normalized: %s", staged)
	assert.NotEqual(t, "facade.jpg", staged, "staged name must not reuse the client's name")

	stagedPath := filepath.Join(root, "pending_residences", staged)
	_, err = os.Stat(stagedPath)
	require.NoError(t, err)

	permanent, err := fs.Promote(staged)
	require.NoError(t, err)
	assert.NotEqual(t, staged, permanent)

	_, err = os.Stat(stagedPath)
	assert.True(t, os.IsNotExist(err), "staged file should be gone after promotion")
	contents, err := os.ReadFile(filepath.Join(root, "residences", permanent))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(contents))
}

func TestStageRejectsUnknownExtension(t *testing.T) {
	fs, _ := newStore(t)
	_, err := fs.StagePhoto(strings.NewReader("#!/bin/sh"), "payload.sh")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStagedNamesNeverCollide(t *testing.T) {
	fs, _ := newStore(t)
	a, err := fs.StagePhoto(strings.NewReader("one"), "photo.png")
	require.NoError(t, err)
	b, err := fs.StagePhoto(strings.NewReader("two"), "photo.png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProfilePhotoNameEmbedsUserID(t *testing.T) {
	fs, root := newStore(t)
	name, err := fs.SaveProfilePhoto(strings.NewReader("portrait"), 7, "me.jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "profile-7-"))

	_, err = os.Stat(filepath.Join(root, "profiles", name))
	require.NoError(t, err)
	require.NoError(t, fs.DeleteProfilePhoto(name))
	// Second delete is a no-op, not an error.
	require.NoError(t, fs.DeleteProfilePhoto(name))
}

func TestListStaged(t *testing.T) {
	fs, _ := newStore(t)
	name, err := fs.StagePhoto(strings.NewReader("x"), "a.webp")
	require.NoError(t, err)

	staged, err := fs.ListStaged()
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, name, staged[0].Name)
	assert.WithinDuration(t, time.Now(), staged[0].ModTime, time.Minute)
}

func TestDeleteStagedIgnoresPathTricks(t *testing.T) {
	fs, root := newStore(t)
	outside := filepath.Join(root, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	require.NoError(t, fs.DeleteStaged("../outside.txt"))
	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the staging area must survive")
}
