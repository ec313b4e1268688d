package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="profile"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File["profile"]
	require.Len(t, files, 1)
	return files[0]
}

func TestStorage_SaveAndCommit(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, 1024)
	require.NoError(t, err)

	stored, err := s.Save(fileHeader(t, "img.jpg", "image/jpeg", []byte("jpegdata")))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.Dir(), "img.jpg"), stored.Path)
	assert.Equal(t, "/uploads/img.jpg", stored.URL)

	// nothing under the final name before commit
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Commit(stored))
	data, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStorage_SaveRejects(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		wantErr     error
	}{
		{name: "gif", filename: "a.gif", contentType: "image/gif", content: []byte("x"), wantErr: ErrNoFile},
		{name: "text", filename: "a.txt", contentType: "text/plain", content: []byte("x"), wantErr: ErrNoFile},
		{name: "too large", filename: "a.png", contentType: "image/png", content: bytes.Repeat([]byte("x"), 2048), wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(t.TempDir(), 1024)
			require.NoError(t, err)

			_, err = s.Save(fileHeader(t, tt.filename, tt.contentType, tt.content))
			assert.ErrorIs(t, err, tt.wantErr)

			entries, err := os.ReadDir(s.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestStorage_SaveNil(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = s.Save(nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestStorage_SaveStripsDirectories(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	fh := fileHeader(t, "img.png", "image/png", []byte("png"))
	fh.Filename = "../../etc/img.png"

	stored, err := s.Save(fh)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "img.png"), stored.Path)
	require.NoError(t, s.Discard(stored))
}

func TestStorage_SaveOverwrites(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	first, err := s.Save(fileHeader(t, "img.png", "image/png", []byte("first")))
	require.NoError(t, err)
	require.NoError(t, s.Commit(first))
	stored, err := s.Save(fileHeader(t, "img.png", "image/png", []byte("second")))
	require.NoError(t, err)
	require.NoError(t, s.Commit(stored))

	data, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestStorage_DiscardKeepsCommittedFile(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	kept, err := s.Save(fileHeader(t, "img.png", "image/png", []byte("ann")))
	require.NoError(t, err)
	require.NoError(t, s.Commit(kept))

	// a second upload under the same name that is never committed
	dropped, err := s.Save(fileHeader(t, "img.png", "image/png", []byte("bob")))
	require.NoError(t, err)
	require.NoError(t, s.Discard(dropped))
	require.NoError(t, s.Discard(dropped), "discarding twice is harmless")

	data, err := os.ReadFile(kept.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("ann"), data)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStorage_MaxSize(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 5*1024*1024)
	require.NoError(t, err)
	assert.Equal(t, int64(5*1024*1024), s.MaxSize())
}
