package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resume-scanner/internal/shared/storage/object"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for files that are neither PDF nor DOCX.
var ErrUnsupported = errors.New("unsupported file type")

// AllowedResume reports whether fileName has a .pdf or .docx extension.
func AllowedResume(fileName string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// ContentType returns the MIME type for a resume file name, or
// application/octet-stream when the extension is not a resume type.
func ContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	default:
		return "application/octet-stream"
	}
}

// ExtractedKey is the object key holding the cached text for fileKey.
func ExtractedKey(fileKey string) string {
	return fileKey + ".extracted.txt"
}

// ExtractText pulls plain text out of a PDF or DOCX payload. The file
// extension decides first; a sniffed content type is used when the extension
// is missing or unknown.
func ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch detectType(fileName, data) {
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(fileName))
	}
}

// FromStore reads fileKey, extracts its text and persists a derived
// .extracted.txt copy next to it.
func FromStore(ctx context.Context, store object.ObjectStore, fileKey string, fileName string) (string, error) {
	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: read: %w", fileKey, err)
	}

	text, err := ExtractText(ctx, raw, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}
	if err := SaveExtracted(ctx, store, fileKey, text); err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}
	return text, nil
}

// SaveExtracted stores text under ExtractedKey(fileKey).
func SaveExtracted(ctx context.Context, store object.ObjectStore, fileKey string, text string) error {
	_, err := store.Put(ctx, ExtractedKey(fileKey), "text/plain; charset=utf-8", strings.NewReader(text))
	return err
}

// LoadExtracted returns the cached text for fileKey.
func LoadExtracted(ctx context.Context, store object.ObjectStore, fileKey string) (string, error) {
	body, err := store.Open(ctx, ExtractedKey(fileKey))
	if err != nil {
		return "", err
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func detectType(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	}

	sniffed := strings.Split(http.DetectContentType(data), ";")[0]
	switch sniffed {
	case mimePDF:
		return mimePDF
	case "application/zip":
		if isDOCXArchive(data) {
			return mimeDOCX
		}
	}
	return sniffed
}

func isDOCXArchive(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
