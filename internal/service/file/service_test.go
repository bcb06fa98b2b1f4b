package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, file io.Reader, path string, contentType string) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.objects[path] = b
	m.types[path] = contentType
	return path, nil
}

func (m *memoryStorage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[path])), nil
}

func (m *memoryStorage) Delete(_ context.Context, path string) error {
	delete(m.objects, path)
	return nil
}

func (m *memoryStorage) GetURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://files.test/" + path, nil
}

func (m *memoryStorage) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func noisyImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7 % 256), uint8(y * 13 % 256), uint8((x ^ y) % 256), 255})
		}
	}
	return img
}

func TestUploadAttendanceProof(t *testing.T) {
	store := newMemoryStorage()
	svc := NewFileService(store, time.Minute).(*fileServiceImpl)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, noisyImage(64, 64)))

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	key, err := svc.UploadAttendanceProof(t.Context(), "emp-1", day, &buf, "selfie.PNG", "check_in")
	require.NoError(t, err)
	assert.Equal(t, "attendance/2025-03-10/emp-1-check_in-1700000000.jpg", key)
	assert.Equal(t, "image/jpeg", store.types[key])

	_, _, err = image.Decode(bytes.NewReader(store.objects[key]))
	assert.NoError(t, err, "stored proof is a decodable JPEG")
}

func TestUploadFaceImage_RejectsNonImages(t *testing.T) {
	svc := NewFileService(newMemoryStorage(), 0)

	_, err := svc.UploadFaceImage(t.Context(), "u1", strings.NewReader("%PDF"), "face.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestCompressImage_ShrinksLargeImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, noisyImage(1600, 1200), &jpeg.Options{Quality: 100}))
	require.Greater(t, buf.Len(), 150*1024)

	out, err := compressImage(buf.Bytes(), 150*1024)
	require.NoError(t, err)
	assert.Less(t, len(out), buf.Len())
}

func TestCompressImage_SmallJPEGPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, noisyImage(32, 32), nil))

	out, err := compressImage(buf.Bytes(), 150*1024)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
}

func TestGetFileURL(t *testing.T) {
	svc := NewFileService(newMemoryStorage(), 0)
	url, err := svc.GetFileURL(t.Context(), "faces/u1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/faces/u1/a.jpg", url)
}
