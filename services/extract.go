package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxVoicePromptBytes giới hạn độ dài text lấy từ tài liệu làm voice prompt.
const MaxVoicePromptBytes = 20000

type InputType string

const (
	InputTXT  InputType = "txt"
	InputDOCX InputType = "docx"
	InputPDF  InputType = "pdf"
)

// InputTypeFromName ánh xạ phần mở rộng file sang InputType.
func InputTypeFromName(filename string) (InputType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return InputPDF, nil
	case ".docx":
		return InputDOCX, nil
	case ".txt":
		return InputTXT, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(filename))
	}
}

// ExtractVoicePrompt trích text từ tài liệu, làm sạch và cắt theo MaxVoicePromptBytes.
func ExtractVoicePrompt(filename string, data []byte) (string, error) {
	kind, err := InputTypeFromName(filename)
	if err != nil {
		return "", err
	}

	var raw string
	switch kind {
	case InputPDF:
		raw, err = extractTextFromPDF(data)
	case InputDOCX:
		raw, err = extractTextFromDOCX(data)
	case InputTXT:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: txt không phải UTF-8", ErrUnsupportedFile)
		}
		raw = string(data)
	}
	if err != nil {
		return "", err
	}

	return truncateUTF8(PreCleanText(raw), MaxVoicePromptBytes), nil
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("không thể tạo reader PDF: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

// .docx là file zip, văn bản nằm trong các thẻ <w:t> của word/document.xml.
func extractTextFromDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx không hợp lệ: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("docx thiếu word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					buf.WriteString(text + " ")
				}
			}
		case xml.EndElement:
			if se.Name.Local == "p" {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
