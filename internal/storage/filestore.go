// Package storage manages the photo files backing the registry: a staging
// area for photos attached to drafts under review, a permanent area for
// approved residence photos, and profile photos. Rows own files: the
// database decides which files exist, storage just follows.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"sigap-backend/internal/apperr"
)

const (
	pendingSubdir   = "pending_residences"
	residenceSubdir = "residences"
	profileSubdir   = "profiles"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type StagedFile struct {
	Name    string
	ModTime time.Time
}

type FileStore struct {
	rootDir      string
	pendingDir   string
	residenceDir string
	profileDir   string
}

func NewFileStore(rootDir string) (*FileStore, error) {
	fs := &FileStore{
		rootDir:      rootDir,
		pendingDir:   filepath.Join(rootDir, pendingSubdir),
		residenceDir: filepath.Join(rootDir, residenceSubdir),
		profileDir:   filepath.Join(rootDir, profileSubdir),
	}
	for _, dir := range []string{fs.pendingDir, fs.residenceDir, fs.profileDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create uploads directory %s: %w", dir, err)
		}
	}
	return fs, nil
}

func (fs *FileStore) RootDir() string { return fs.rootDir }

// ValidExtension reports whether the original filename carries an accepted
// image extension.
func ValidExtension(originalName string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(originalName))]
}

func newFilename(originalName string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
}

// StagePhoto writes an uploaded draft photo into the staging area under a
// fresh collision-free name and returns that name.
func (fs *FileStore) StagePhoto(r io.Reader, originalName string) (string, error) {
	if !ValidExtension(originalName) {
		return "", apperr.Validation("unsupported image type")
	}
	name := newFilename(originalName)
	if err := writeFile(filepath.Join(fs.pendingDir, name), r); err != nil {
		return "", err
	}
	return name, nil
}

// SaveResidencePhoto writes an uploaded photo straight into the permanent
// area, for photos added to an already approved residence.
func (fs *FileStore) SaveResidencePhoto(r io.Reader, originalName string) (string, error) {
	if !ValidExtension(originalName) {
		return "", apperr.Validation("unsupported image type")
	}
	name := newFilename(originalName)
	if err := writeFile(filepath.Join(fs.residenceDir, name), r); err != nil {
		return "", err
	}
	return name, nil
}

// SaveProfilePhoto writes a user's profile photo. The name embeds the user
// id so stale files are easy to trace, plus a random suffix so replacing a
// photo never collides with a cached old one.
func (fs *FileStore) SaveProfilePhoto(r io.Reader, userID int64, originalName string) (string, error) {
	if !ValidExtension(originalName) {
		return "", apperr.Validation("unsupported image type")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("profile-%d-%s%s", userID, uuid.New().String()[:8], ext)
	if err := writeFile(filepath.Join(fs.profileDir, name), r); err != nil {
		return "", err
	}
	return name, nil
}

// Promote moves a staged photo into the permanent area under a fresh name
// and returns that name. Rename first; when staging and permanent areas sit
// on different filesystems, fall back to copy then unlink.
func (fs *FileStore) Promote(stagedName string) (string, error) {
	src := filepath.Join(fs.pendingDir, filepath.Base(stagedName))
	dstName := newFilename(stagedName)
	dst := filepath.Join(fs.residenceDir, dstName)

	if err := os.Rename(src, dst); err == nil {
		return dstName, nil
	}
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open staged photo %s: %w", stagedName, err)
	}
	defer in.Close()
	if err := writeFile(dst, in); err != nil {
		return "", err
	}
	os.Remove(src)
	return dstName, nil
}

func (fs *FileStore) DeleteStaged(name string) error {
	return removeIfExists(filepath.Join(fs.pendingDir, filepath.Base(name)))
}

func (fs *FileStore) DeleteResidencePhoto(name string) error {
	return removeIfExists(filepath.Join(fs.residenceDir, filepath.Base(name)))
}

func (fs *FileStore) DeleteProfilePhoto(name string) error {
	return removeIfExists(filepath.Join(fs.profileDir, filepath.Base(name)))
}

// ListStaged returns every file currently in the staging area with its
// modification time, for the expiry sweep.
func (fs *FileStore) ListStaged() ([]StagedFile, error) {
	entries, err := os.ReadDir(fs.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("read staging directory: %w", err)
	}
	var files []StagedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StagedFile{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// StagedURL and friends produce the public paths the static file handler
// serves.
func StagedURL(name string) string    { return "/uploads/" + pendingSubdir + "/" + name }
func ResidenceURL(name string) string { return "/uploads/" + residenceSubdir + "/" + name }
func ProfileURL(name string) string   { return "/uploads/" + profileSubdir + "/" + name }

func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create photo file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write photo file: %w", err)
	}
	return f.Close()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
