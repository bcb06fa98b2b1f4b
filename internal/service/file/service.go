package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("invalid file type: only jpg, jpeg, png allowed")

var imageExts = []string{".jpg", ".jpeg", ".png"}

type FileService interface {
	// UploadFaceImage stores a user's reference face as a compressed JPEG.
	UploadFaceImage(ctx context.Context, userID string, file io.Reader, filename string) (string, error)

	// UploadAttendanceProof stores a check-in or check-out photo under the work-date.
	UploadAttendanceProof(ctx context.Context, employeeID string, workDate time.Time, file io.Reader, filename string, kind string) (string, error)

	UploadTeamDocument(ctx context.Context, teamID string, file io.Reader, filename string, contentType string) (string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string) (string, error)
}

type fileServiceImpl struct {
	storage   storage.FileStorage
	urlExpiry time.Duration
	now       func() time.Time
}

func NewFileService(storage storage.FileStorage, urlExpiry time.Duration) FileService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &fileServiceImpl{
		storage:   storage,
		urlExpiry: urlExpiry,
		now:       time.Now,
	}
}

func isImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range imageExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UploadFaceImage implements FileService.
func (s *fileServiceImpl) UploadFaceImage(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	if !isImage(filename) {
		return "", ErrUnsupportedImage
	}

	compressed, err := readAndCompress(file)
	if err != nil {
		return "", err
	}

	key := path.Join("faces", userID, fmt.Sprintf("%s.jpg", uuid.New().String()))
	uploaded, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload face image: %w", err)
	}
	return uploaded, nil
}

// UploadAttendanceProof implements FileService.
// Path: attendance/{date}/{employeeID}-{kind}-{unix}.jpg
func (s *fileServiceImpl) UploadAttendanceProof(ctx context.Context, employeeID string, workDate time.Time, file io.Reader, filename string, kind string) (string, error) {
	if !isImage(filename) {
		return "", ErrUnsupportedImage
	}

	compressed, err := readAndCompress(file)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s-%d.jpg", employeeID, kind, s.now().Unix())
	key := path.Join("attendance", workDate.Format("2006-01-02"), name)

	uploaded, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload attendance proof: %w", err)
	}
	return uploaded, nil
}

// UploadTeamDocument implements FileService.
func (s *fileServiceImpl) UploadTeamDocument(ctx context.Context, teamID string, file io.Reader, filename string, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join("teams", teamID, "documents", uuid.New().String()+ext)
	uploaded, err := s.storage.Upload(ctx, file, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload team document: %w", err)
	}
	return uploaded, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string) (string, error) {
	return s.storage.GetURL(ctx, path, s.urlExpiry)
}

func readAndCompress(file io.Reader) ([]byte, error) {
	buffer, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, 150*1024)
	if err != nil {
		return nil, fmt.Errorf("failed to compress image: %w", err)
	}
	return compressed, nil
}

// compressImage re-encodes an image as JPEG, lowering quality and then scaling down
// until it fits below maxSize. Small images that are already JPEG pass through.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if format == "jpeg" && len(buffer) <= maxSize {
		return buffer, nil
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	// Still too large: scale towards ~100KB, keeping the aspect ratio
	bounds := img.Bounds()
	ratio := math.Sqrt(float64(100*1024) / float64(len(compressed)))
	width := max(int(float64(bounds.Dx())*ratio), 1)
	height := max(int(float64(bounds.Dy())*ratio), 1)

	compressed, err = encodeJPEG(resizeImage(img, width, height), 70)
	if err != nil {
		return nil, err
	}
	return compressed, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage scales src with CatmullRom interpolation.
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
