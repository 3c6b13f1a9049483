// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple filename",
			input: "image.jpg",
			want:  "image.jpg",
		},
		{
			name:  "filename with spaces",
			input: "my image.jpg",
			want:  "my image.jpg",
		},
		{
			name:  "path traversal attempt",
			input: "../../../etc/passwd",
			want:  "passwd",
		},
		{
			name:  "path with directory",
			input: "uploads/images/photo.png",
			want:  "photo.png",
		},
		{
			name:  "absolute path",
			input: "/var/www/uploads/file.txt",
			want:  "file.txt",
		},
		{
			name:    "single dot",
			input:   ".",
			wantErr: true,
		},
		{
			name:    "double dot",
			input:   "..",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:  "hidden file",
			input: ".htaccess",
			want:  ".htaccess",
		},
		{
			name:  "windows path",
			input: `C:\Users\me\photo.png`,
			want:  "photo.png",
		},
		{
			name:  "double extension",
			input: "file.tar.gz",
			want:  "file.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeFilename() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("SanitizeFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}


func TestUploadFilename(t *testing.T) {
	tests := []struct {
		filename, ext, want string
	}{
		{"Health Camp (1).JPG", ".jpg", "health-camp-1.jpg"},
		{"../../secret.png", ".png", "secret.png"},
		{"", ".jpg", "image.jpg"},
		{"!!!.gif", ".GIF", "image.gif"},
	}
	for _, tt := range tests {
		if got := UploadFilename(tt.filename, tt.ext); got != tt.want {
			t.Errorf("UploadFilename(%q, %q) = %q, want %q", tt.filename, tt.ext, got, tt.want)
		}
	}
}
