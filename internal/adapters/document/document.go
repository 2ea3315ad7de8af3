// Package document loads policy text from disk. PDF files go through ledongthuc/pdf,
// everything else is read as UTF-8 text
package document

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	perr "policyxray/internal/platform/errors"

	"github.com/ledongthuc/pdf"
)

// MaxPDFPages bounds how many pages are extracted from one PDF
const MaxPDFPages = 200

// pageBreak separates pages so the clause segmenter sees a boundary
const pageBreak = "\n\n"

// Read returns the text content of path
func Read(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeNotFound, "document: read %s", path)
	}
	if !utf8.Valid(b) {
		return "", perr.InvalidArgf("document: %s is not valid UTF-8 text", path)
	}
	return string(b), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "document: open pdf %s", path)
	}
	defer f.Close()

	n := min(r.NumPage(), MaxPDFPages)
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "document: page %d of %s", i, path)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", perr.InvalidArgf("document: no extractable text in %s", path)
	}
	return strings.Join(pages, pageBreak), nil
}
