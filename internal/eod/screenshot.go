package eod

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

var ErrScreenshotNotFound = errors.New("screenshot not found")

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// ResolveScreenshot finds the image under dir whose file name matches the
// base name of ref. The stored path usually points at the machine that
// recorded the log, so only the base name is compared. Unreadable
// sub-directories are skipped.
func ResolveScreenshot(dir, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty screenshot path: %w", ErrScreenshotNotFound)
	}
	name := path.Base(strings.ReplaceAll(ref, `\`, "/"))

	var found string
	stop := errors.New("found")
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !imageExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		if d.Name() == name {
			found = p
			return stop
		}
		return nil
	})
	if found != "" {
		return found, nil
	}
	if err != nil && !errors.Is(err, stop) {
		return "", fmt.Errorf("walk %s: %w", dir, err)
	}
	return "", fmt.Errorf("%s in %s: %w", name, dir, ErrScreenshotNotFound)
}
