package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kalafut/imohash"
)

type OSFS struct{}

func (OSFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

func (OSFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) Chmod(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

func (OSFS) Birthtime(path string) (time.Time, bool, error) {
	return birthtime(path)
}

// CopyFile copies src to dst and verifies the result by sampled hash. dst must
// not exist yet.
func (f OSFS) CopyFile(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return verifyCopy(src, dst)
}

// Rename moves src to dst, falling back to copy and remove across devices.
func (f OSFS) Rename(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := f.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return err
	}
	return dstFile.Close()
}

func verifyCopy(src, dst string) error {
	want, err := imohash.SumFile(src)
	if err != nil {
		return err
	}
	got, err := imohash.SumFile(dst)
	if err != nil {
		return err
	}
	if want != got {
		os.Remove(dst)
		return fmt.Errorf("copy %s: checksum mismatch", dst)
	}
	return nil
}
