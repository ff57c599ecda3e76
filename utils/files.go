package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	"jpeg": {}, "jpg": {}, "png": {}, "gif": {},
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"txt": {}, "zip": {}, "rar": {},
}

// AllowedUpload checks the file extension against the attachment allowlist
func AllowedUpload(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	_, ok := allowedExtensions[ext]
	return ok
}

// MimeTypeFor prefers the declared type and falls back to the extension
func MimeTypeFor(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ContentDisposition quotes the filename for an attachment download
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filename)}); v != "" {
		return v
	}
	return "attachment"
}
