// Package upload streams audio files to HTTP sidecars as multipart forms.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
)

// FileField is the form field that carries the audio payload.
const FileField = "audio"

// AudioForm opens path and returns a reader producing a multipart form with
// the file under FileField plus the non-empty text fields. The body is
// streamed so long recordings are never held in memory. Callers must close it.
func AudioForm(path string, fields map[string]string) (io.ReadCloser, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	contentType := writer.FormDataContentType()

	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	go func() {
		defer file.Close()
		pw.CloseWithError(writeForm(writer, file, filepath.Base(path), keys, fields))
	}()
	return pr, contentType, nil
}

func writeForm(writer *multipart.Writer, file io.Reader, name string, keys []string, fields map[string]string) error {
	for _, key := range keys {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile(FileField, name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	return writer.Close()
}
