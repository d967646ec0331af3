package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	names   []string
	content []byte
	url     string
	err     error
}

func (s *stubStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	s.names = append(s.names, name)
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.content = data
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

// pngBytes is a minimal payload carrying the PNG signature.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 64)...)

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUploadAvatarStoresPNG(t *testing.T) {
	storage := &stubStorage{url: "https://cdn.example.com/avatars/abc.png"}
	svc := NewUploadService(storage, 2, zerolog.Nop())

	resp, err := svc.UploadAvatar(context.Background(), multipartFile(t, "me.png", pngBytes), 7)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/avatars/abc.png", resp.URL)

	require.Len(t, storage.names, 1)
	require.Regexp(t, `^avatar-7-[0-9a-f-]{36}\.png$`, storage.names[0])
	require.Equal(t, pngBytes, storage.content)
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	storage := &stubStorage{}
	svc := NewUploadService(storage, 2, zerolog.Nop())

	_, err := svc.UploadAvatar(context.Background(), multipartFile(t, "notes.txt", []byte("plain text, not an image")), 7)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
	require.Empty(t, storage.names)
}

func TestUploadAvatarRejectsOversizedHeader(t *testing.T) {
	svc := NewUploadService(&stubStorage{}, 1, zerolog.Nop())

	file := multipartFile(t, "big.png", pngBytes)
	file.Size = 2 * 1024 * 1024

	_, err := svc.UploadAvatar(context.Background(), file, 7)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadAvatarStorageFailure(t *testing.T) {
	storage := &stubStorage{err: errors.New("cloud unreachable")}
	svc := NewUploadService(storage, 2, zerolog.Nop())

	_, err := svc.UploadAvatar(context.Background(), multipartFile(t, "me.png", pngBytes), 7)
	require.ErrorContains(t, err, "cloud unreachable")
}

func TestUploadAvatarNilFile(t *testing.T) {
	svc := NewUploadService(&stubStorage{}, 2, zerolog.Nop())

	_, err := svc.UploadAvatar(context.Background(), nil, 7)
	require.Error(t, err)
}
