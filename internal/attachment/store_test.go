package attachment_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/attachment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newStore(t *testing.T, max int64) (*attachment.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := attachment.NewStore(attachment.Config{Root: dir, URLPrefix: "/uploads/", MaxBytes: max})
	require.NoError(t, err)
	return s, dir
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(des))
	for _, d := range des {
		names = append(names, d.Name())
	}
	return names
}

func TestStageAndPromote(t *testing.T) {
	s, dir := newStore(t, 1<<20)
	id := uuid.New()

	st, err := s.Stage(1, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", st.ContentType)

	assert.Equal(t, "/uploads/installation_"+id.String()+"_1.png", s.Ref(id, st))
	ref, err := s.Promote(id, st)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/installation_"+id.String()+"_1.png", ref)

	_, err = s.Promote(id, st)
	assert.Error(t, err, "a staged file can be promoted once")

	got, err := os.ReadFile(filepath.Join(dir, "installation_"+id.String()+"_1.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
	assert.Len(t, entries(t, dir), 1)
}

func TestPromote_OverwritesSlot(t *testing.T) {
	s, dir := newStore(t, 1<<20)
	id := uuid.New()

	pdf := []byte("%PDF-1.4\n%test\n")
	st, err := s.Stage(2, bytes.NewReader(pdf))
	require.NoError(t, err)
	_, err = s.Promote(id, st)
	require.NoError(t, err)

	st, err = s.Stage(2, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	ref, err := s.Promote(id, st)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(ref, "_2.png"))
	assert.Equal(t, []string{"installation_" + id.String() + "_2.png"}, entries(t, dir))
}

func TestStage_Rejections(t *testing.T) {
	s, dir := newStore(t, 16)

	_, err := s.Stage(1, bytes.NewReader(nil))
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = s.Stage(1, bytes.NewReader(bytes.Repeat([]byte{0x89}, 17)))
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = s.Stage(3, bytes.NewReader(pngBytes))
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = s.Stage(1, strings.NewReader("plain text"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	assert.Empty(t, entries(t, dir))
	assert.Empty(t, entries(t, s.Config().StagingDir), "rejected uploads must not leave staging files")
}

func TestDiscard(t *testing.T) {
	s, dir := newStore(t, 0)
	st, err := s.Stage(1, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	require.Len(t, entries(t, s.Config().StagingDir), 1)
	assert.Empty(t, entries(t, dir))

	s.Discard(st, nil)
	assert.Empty(t, entries(t, s.Config().StagingDir))
	s.Discard(st)
}

func TestRemove(t *testing.T) {
	s, dir := newStore(t, 0)
	id := uuid.New()
	st, err := s.Stage(1, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	ref, err := s.Promote(id, st)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ref))
	assert.Empty(t, entries(t, dir))
	assert.NoError(t, s.Remove(ref))
	assert.NoError(t, s.Remove("/elsewhere/x.png"))
}

func TestStage_KeepsPendingUploadsOutOfServedRoot(t *testing.T) {
	s, dir := newStore(t, 1<<20)
	staging := s.Config().StagingDir
	assert.Equal(t, filepath.Join(filepath.Dir(dir), ".uploads-staging"), staging)

	st, err := s.Stage(1, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Empty(t, entries(t, dir), "pending uploads must not be reachable under the public prefix")
	assert.Len(t, entries(t, staging), 1)

	_, err = s.Promote(uuid.New(), st)
	require.NoError(t, err)
	assert.Len(t, entries(t, dir), 1)
	assert.Empty(t, entries(t, staging))

	_, err = attachment.NewStore(attachment.Config{Root: dir, StagingDir: filepath.Join(dir, "tmp")})
	assert.Error(t, err, "staging under the served root is refused")
}

func TestStage_AllowedTypes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	pdfOnly, err := attachment.NewStore(attachment.Config{Root: root, AllowedTypes: []string{"application/pdf"}})
	require.NoError(t, err)
	_, err = pdfOnly.Stage(1, bytes.NewReader(pngBytes))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	st, err := pdfOnly.Stage(1, strings.NewReader("%PDF-1.4\n%test\n"))
	require.NoError(t, err)
	pdfOnly.Discard(st)

	anyType, err := attachment.NewStore(attachment.Config{Root: root, AllowedTypes: []string{attachment.AnyType}})
	require.NoError(t, err)
	st, err = anyType.Stage(2, strings.NewReader("plain text"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", st.ContentType)
	anyType.Discard(st)

	def, err := attachment.NewStore(attachment.Config{Root: root})
	require.NoError(t, err)
	assert.Equal(t, attachment.DefaultTypes, def.Config().AllowedTypes)
}
