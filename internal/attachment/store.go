// Package attachment stores installation evidence files on local disk.
//
// Files are written in two steps. Stage streams an upload to a temporary file
// under StagingDir, enforcing the size limit and sniffing the content type.
// StagingDir is never served, so partial or rejected uploads stay private.
// It must share a filesystem with Root. Promote
// renames the staged file to its deterministic name
// installation_<id>_<slot><ext>, replacing whatever the slot held before.
// Discard removes staged files that were never promoted.
package attachment

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HanjuJo/nexo-v1/internal/apierror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Slots is the number of attachment slots per installation.
const Slots = 2

// Config locates the store. URLPrefix is prepended to file names to build the
// public reference saved on the installation (e.g. "/uploads").
//
// StagingDir defaults to a hidden sibling of Root. AllowedTypes defaults to
// DefaultTypes; a single "*" accepts any sniffed type.
type Config struct {
	Root         string
	StagingDir   string
	URLPrefix    string
	MaxBytes     int64
	AllowedTypes []string
}

// DefaultTypes are the photo and document formats field technicians send.
var DefaultTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic", "application/pdf"}

// AnyType in AllowedTypes disables the content type check.
const AnyType = "*"

type Store struct {
	cfg     Config
	anyType bool
}

// NewStore creates the root and staging directories if needed.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("attachment: root directory is required")
	}
	cfg.Root = filepath.Clean(cfg.Root)
	if cfg.StagingDir == "" {
		cfg.StagingDir = filepath.Join(filepath.Dir(cfg.Root), "."+filepath.Base(cfg.Root)+"-staging")
	}
	cfg.StagingDir = filepath.Clean(cfg.StagingDir)
	if cfg.StagingDir == cfg.Root || strings.HasPrefix(cfg.StagingDir, cfg.Root+string(filepath.Separator)) {
		return nil, errors.New("attachment: staging directory must be outside the served root")
	}
	for _, dir := range []string{cfg.Root, cfg.StagingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("attachment: create %s: %w", dir, err)
		}
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = DefaultTypes
	}
	cfg.URLPrefix = strings.TrimRight(cfg.URLPrefix, "/")
	s := &Store{cfg: cfg}
	for _, t := range cfg.AllowedTypes {
		if t == AnyType {
			s.anyType = true
		}
	}
	return s, nil
}

func (s *Store) Config() Config { return s.cfg }

// Staged is an upload written to a temporary file and not yet promoted.
type Staged struct {
	Slot        int
	ContentType string
	Size        int64
	ext         string
	path        string
}

// Stage copies r into a temporary file. The upload is rejected with a
// validation error when empty, larger than MaxBytes or of an unsupported type.
func (s *Store) Stage(slot int, r io.Reader) (*Staged, error) {
	field := fmt.Sprintf("attachment%d", slot)
	if slot < 1 || slot > Slots {
		return nil, apierror.Validation("invalid attachment slot", map[string]string{field: "slot"})
	}

	tmp, err := os.CreateTemp(s.cfg.StagingDir, "staged-*")
	if err != nil {
		return nil, fmt.Errorf("attachment: create staging file: %w", err)
	}
	st := &Staged{Slot: slot, path: tmp.Name()}

	src := r
	if s.cfg.MaxBytes > 0 {
		src = io.LimitReader(r, s.cfg.MaxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.Discard(st)
		return nil, fmt.Errorf("attachment: write staging file: %w", err)
	}
	st.Size = n

	switch {
	case n == 0:
		s.Discard(st)
		return nil, apierror.Validation("attachment is empty", map[string]string{field: "required"})
	case s.cfg.MaxBytes > 0 && n > s.cfg.MaxBytes:
		s.Discard(st)
		return nil, apierror.Validation(
			fmt.Sprintf("attachment exceeds %d bytes", s.cfg.MaxBytes),
			map[string]string{field: "max_size"},
		)
	}

	mt, err := mimetype.DetectFile(st.path)
	if err != nil {
		s.Discard(st)
		return nil, fmt.Errorf("attachment: detect content type: %w", err)
	}
	if !s.anyType && !mimetype.EqualsAny(mt.String(), s.cfg.AllowedTypes...) {
		s.Discard(st)
		return nil, apierror.Validation(
			fmt.Sprintf("unsupported attachment type %s", mt.String()),
			map[string]string{field: "content_type"},
		)
	}
	st.ContentType = mt.String()
	st.ext = mt.Extension()
	return st, nil
}

// FileName is the deterministic name of an installation slot file.
func FileName(installationID uuid.UUID, slot int, ext string) string {
	return fmt.Sprintf("installation_%s_%d%s", installationID, slot, ext)
}

// Ref is the public reference st will have once promoted for installationID.
func (s *Store) Ref(installationID uuid.UUID, st *Staged) string {
	return s.cfg.URLPrefix + "/" + FileName(installationID, st.Slot, st.ext)
}

// Promote moves st to its final location and returns the public reference.
// Files left in the same slot under another extension are removed.
func (s *Store) Promote(installationID uuid.UUID, st *Staged) (string, error) {
	if st.path == "" {
		return "", errors.New("attachment: staged file already promoted or discarded")
	}
	name := FileName(installationID, st.Slot, st.ext)
	dst := filepath.Join(s.cfg.Root, name)
	if err := os.Rename(st.path, dst); err != nil {
		return "", fmt.Errorf("attachment: promote slot %d: %w", st.Slot, err)
	}
	st.path = ""

	siblings, _ := filepath.Glob(filepath.Join(s.cfg.Root, FileName(installationID, st.Slot, ".*")))
	for _, p := range siblings {
		if p != dst {
			_ = os.Remove(p)
		}
	}
	return s.cfg.URLPrefix + "/" + name, nil
}

// Discard removes staged files. Promoted or nil entries are ignored.
func (s *Store) Discard(staged ...*Staged) {
	for _, st := range staged {
		if st == nil || st.path == "" {
			continue
		}
		if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", st.path).Msg("attachment: discard staged file")
		}
		st.path = ""
	}
}

// Remove deletes the file behind a public reference produced by Promote.
// References outside the store are ignored.
func (s *Store) Remove(ref string) error {
	name := strings.TrimPrefix(ref, s.cfg.URLPrefix+"/")
	if name == ref || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.cfg.Root, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
