package body

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// File is the file part of a multipart upload
type File struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// Multipart is a form upload: one part per field, then the file part
type Multipart struct {
	Fields map[string]string
	File   *File
}

// Boundary returns a fresh multipart boundary
func Boundary() string {
	return "Boundary-" + uuid.NewString()
}

// EncodeMultipart writes the form and returns the body and its content type
func EncodeMultipart(m *Multipart, boundary string) ([]byte, string, error) {
	if m == nil {
		return nil, "", errors.New("multipart payload is nil")
	}
	if boundary == "" {
		boundary = Boundary()
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", errors.Wrap(err, "invalid multipart boundary")
	}

	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.WriteField(name, m.Fields[name]); err != nil {
			return nil, "", errors.Wrapf(err, "failed to write field %s", name)
		}
	}

	if m.File != nil {
		contentType := m.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fieldName := m.File.FieldName
		if fieldName == "" {
			fieldName = "file"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(fieldName), escapeQuotes(m.File.FileName)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to create file part")
		}
		if _, err := part.Write(m.File.Data); err != nil {
			return nil, "", errors.Wrap(err, "failed to write file part")
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finish multipart body")
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
