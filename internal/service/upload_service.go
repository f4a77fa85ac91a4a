package service

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadKind selects the accepted content types and the storage folder.
type UploadKind string

const (
	UploadAny   UploadKind = "files"
	UploadImage UploadKind = "images"
	UploadVideo UploadKind = "videos"
)

var allowedMimeTypes = map[UploadKind][]string{
	UploadAny:   {util.MimeImage, util.MimeVideo, util.MimeAudio, util.MimePDF, "application/ogg"},
	UploadImage: {util.MimeImage},
	UploadVideo: {util.MimeVideo},
}

type UploadResult struct {
	URL             string `json:"url"`
	Name            string `json:"name"`
	Size            int64  `json:"size"`
	MimeType        string `json:"mimeType"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// VideoProber reads video metadata from a local file.
type VideoProber func(path string) (*util.VideoInfo, error)

type UploadService struct {
	Storage  *StorageService
	MaxBytes int64
	Probe    VideoProber
}

func NewUploadService(storage *StorageService, maxBytes int64) *UploadService {
	return &UploadService{
		Storage:  storage,
		MaxBytes: maxBytes,
		Probe:    util.GetVideoInfo,
	}
}

// Upload checks the size and sniffed content type of file and stores it. Videos
// are probed for their duration; a failed probe is logged and leaves it empty.
func (s *UploadService) Upload(ctx context.Context, file *multipart.FileHeader, kind UploadKind) (*UploadResult, error) {
	if file == nil {
		return nil, util.Validationf("file is required")
	}
	if s.MaxBytes > 0 && file.Size > s.MaxBytes {
		return nil, util.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, allowedMimeTypes[kind])
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	filename := objectName(kind, file.Filename)
	result := &UploadResult{
		Name:     file.Filename,
		Size:     file.Size,
		MimeType: mimeType,
	}

	if kind == UploadVideo {
		result.URL, result.DurationMinutes, err = s.uploadVideo(ctx, filename, src, mimeType)
	} else {
		result.URL, err = s.Storage.Upload(ctx, filename, src, file.Size, mimeType)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// uploadVideo spools the video to a temporary file so ffprobe can read it, then
// uploads that file.
func (s *UploadService) uploadVideo(ctx context.Context, filename string, src io.Reader, mimeType string) (string, int, error) {
	tmp, err := os.CreateTemp("", "mdla-video-*"+filepath.Ext(filename))
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}

	duration := 0
	if s.Probe != nil {
		info, err := s.Probe(tmp.Name())
		if err != nil {
			logger.Log.Warn("Video probe failed", zap.String("file", filename), zap.Error(err))
		} else {
			duration = info.DurationMinutes()
		}
	}

	url, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), mimeType)
	if err != nil {
		return "", 0, err
	}
	return url, duration, nil
}

func objectName(kind UploadKind, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return string(kind) + "/" + time.Now().Format("2006/01") + "/" + uuid.NewString() + ext
}
