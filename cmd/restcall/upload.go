package main

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/pkg/errors"
)

// readUpload builds a multipart payload from a file on disk and name=value fields
func readUpload(path string, fields []string) (*restcore.Multipart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload file")
	}

	upload := &restcore.Multipart{
		Fields: make(map[string]string, len(fields)),
		File: &restcore.File{
			FieldName:   "file",
			FileName:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        data,
		},
	}

	for _, f := range fields {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid field %q, expected name=value", f)
		}
		upload.Fields[name] = value
	}

	return upload, nil
}
