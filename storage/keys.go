package storage

import (
	"fmt"
	"path"
	"strings"
)

var documentExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// ExtensionForContentType maps an accepted document type to a file extension.
func ExtensionForContentType(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := documentExtensions[ct]; ok {
		return ext, nil
	}
	return "", fmt.Errorf("unsupported document content type: '%s'", contentType)
}

// DocumentKey builds the object key for a team's registration document.
func DocumentKey(seasonID, teamID, ext string) string {
	return path.Join("documents", seasonID, teamID+ext)
}
