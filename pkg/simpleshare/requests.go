package simpleshare

import "io"

// CreateLinkRequest contains parameters for creating a shortened link.
type CreateLinkRequest struct {
	Address        string
	CustomCode     string
	ExpirationDays int
}

// UploadFileRequest contains parameters for uploading a shared file.
type UploadFileRequest struct {
	FileName       string
	ContentType    string
	Data           io.Reader
	Size           int64
	ExpirationDays int
	Password       string
}

// CreateTextRequest contains parameters for creating a text paste.
type CreateTextRequest struct {
	Content        string
	ContentType    string
	ExpirationDays int
	Password       string
}

// FileDownload is the result of a successful file fetch: the record plus a
// stream over the payload. The caller owns closing Body.
type FileDownload struct {
	Record *FileRecord
	Body   io.ReadCloser
}

// TextContent is the result of a successful text fetch.
type TextContent struct {
	Record  *TextRecord
	Content string
}
