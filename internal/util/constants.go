package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimeAudio = "audio/"
	MimePDF   = "application/pdf"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
