package server

import (
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
)

// multipartOverhead is allowed on top of the file limit for boundaries and other fields.
const multipartOverhead = 1 << 20

// FileInfo describes an uploaded file
type FileInfo struct {
	OriginalName string `json:"original_name"`
	SizeKB       int64  `json:"size_kb"`
	MimeType     string `json:"mime_type"`
}

// upload is a file read from the "file" form field.
type upload struct {
	Data []byte
	Info FileInfo
}

// readUpload reads the "file" field of a multipart request into memory.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrFileTooLarge{Limit: s.maxUpload}
		}
		// Not multipart, or malformed: there is no file to read.
		return nil, &ErrNoFile{}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ErrNoFile{}
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUpload {
		return nil, &ErrFileTooLarge{Limit: s.maxUpload}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &upload{Data: data, Info: fileInfo(header)}, nil
}

func fileInfo(header *multipart.FileHeader) FileInfo {
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return FileInfo{
		OriginalName: header.Filename,
		SizeKB:       int64(math.Round(float64(header.Size) / 1024)),
		MimeType:     mimeType,
	}
}
