// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename extracts only the base filename, removing any directory
// components such as "../../etc/passwd". Returns an error if nothing usable remains.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(filepath.ToSlash(filename))
	if i := strings.LastIndex(safe, "\\"); i >= 0 {
		safe = safe[i+1:]
	}
	if safe == "." || safe == ".." || safe == "" || safe == "/" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// UploadFilename turns a client-supplied filename into a slugged base name
// with ext, for example "Health Camp (1).JPG" with ".jpg" gives "health-camp-1.jpg".
func UploadFilename(filename, ext string) string {
	base, err := SanitizeFilename(filename)
	if err != nil {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	slug := Slugify(base)
	if slug == "" {
		slug = "image"
	}
	return slug + strings.ToLower(ext)
}
