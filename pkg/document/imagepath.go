package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveImagePath locates the page image referenced by doc. PAGE files
// name the image relative to the workspace, the directory above the one
// holding the XML file. hOCR names it relative to the hOCR file itself.
func ResolveImagePath(xmlPath string, doc *Document) (string, error) {
	if doc.Image == "" {
		return "", fmt.Errorf("%w: %s does not reference an image", ErrImageNotFound, doc.ID)
	}

	var candidate string
	switch {
	case filepath.IsAbs(doc.Image):
		candidate = doc.Image
	case doc.Dialect == PAGE:
		candidate = filepath.Join(filepath.Dir(filepath.Dir(xmlPath)), doc.Image)
	default:
		candidate = filepath.Join(filepath.Dir(xmlPath), doc.Image)
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, candidate)
	}
	return candidate, nil
}
