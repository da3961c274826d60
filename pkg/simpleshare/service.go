package simpleshare

import "context"

// Service is the content-sharing store: three parallel content services
// (links, files, texts) over a shared metadata store and blob store.
//
// Every read applies the same gate, in this order: existence, expiration
// (with lazy cleanup), password, payload presence, counter increment.
// Reordering changes observable behavior and must be avoided.
type Service interface {
	// Link operations
	CreateLink(ctx context.Context, req CreateLinkRequest) (*LinkRecord, error)
	GetLink(ctx context.Context, code string) (*LinkRecord, error)
	ResolveLink(ctx context.Context, code string) (string, error)
	DeleteLink(ctx context.Context, code string) error

	// File operations
	UploadFile(ctx context.Context, req UploadFileRequest) (*FileRecord, error)
	DownloadFile(ctx context.Context, id, password string) (*FileDownload, error)
	GetFileInfo(ctx context.Context, id string) (*FileRecord, error)
	DeleteFile(ctx context.Context, id string) error

	// Text operations
	CreateText(ctx context.Context, req CreateTextRequest) (*TextRecord, error)
	FetchText(ctx context.Context, id, password string) (*TextContent, error)
	GetTextInfo(ctx context.Context, id string) (*TextRecord, error)
	DeleteText(ctx context.Context, id string) error
}
