package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "custom"
	}
	return s
}

// IsCustomizeActive reports whether a customize session is open.
func (e *Engine) IsCustomizeActive() (bool, error) {
	st, err := e.ReadState()
	if err != nil {
		return false, err
	}
	return st.CustomizeSession != nil, nil
}

// CustomizeStart opens a session: every file touched by a currently-applied
// skill is backed up (so Abort can revert byte-for-byte) and hashed (so
// Commit can tell which files the operator actually changed). Only the
// footprint of currently-applied skills is captured, not arbitrary tracked
// files in the project. The description is recorded now and reused verbatim
// by Commit.
func (e *Engine) CustomizeStart(description string) error {
	st, err := e.ReadState()
	if err != nil {
		return err
	}
	if st.CustomizeSession != nil {
		return newErr(KindPrecondition, "customize_start")
	}
	if e.HasPendingBackup() {
		return newErr(KindPrecondition, "customize_start")
	}

	touched := touchedFiles(st.AppliedSkills)
	if err := e.CreateBackup(touched); err != nil {
		return err
	}

	hashes, err := hashFiles(e.Root, touched)
	if err != nil {
		e.RestoreBackup()
		return newErr(KindIO, "customize_start").withErr(err)
	}

	st.CustomizeSession = &CustomizeSession{
		Description: description,
		StartedAt:   nowRFC3339(),
		FileHashes:  hashes,
		NextSeq:     len(st.CustomModifications) + 1,
	}
	if err := e.writeState(st); err != nil {
		e.RestoreBackup()
		return err
	}
	return nil
}

// CustomizeCommit closes an open session, archiving every changed file as a
// unified-diff patch under .g2/custom and recording the modification in the
// ledger. The description supplied to CustomizeStart is reused verbatim.
func (e *Engine) CustomizeCommit() (*CustomModification, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	session := st.CustomizeSession
	if session == nil {
		return nil, newErr(KindPrecondition, "customize_commit")
	}
	description := session.Description

	touched := make([]string, 0, len(session.FileHashes))
	for rel := range session.FileHashes {
		touched = append(touched, rel)
	}
	newHashes, err := hashFiles(e.Root, touched)
	if err != nil {
		return nil, newErr(KindIO, "customize_commit").withErr(err)
	}

	var changed []string
	for rel, before := range session.FileHashes {
		if newHashes[rel] != before {
			changed = append(changed, rel)
		}
	}
	if len(changed) == 0 {
		st.CustomizeSession = nil
		if err := e.writeState(st); err != nil {
			return nil, err
		}
		return nil, e.ClearBackup()
	}

	patch, err := treeDiff(e.backupDir(), e.Root, changed)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.customDir(), 0o755); err != nil {
		return nil, newErr(KindIO, "customize_commit").withErr(err)
	}
	filename := fmt.Sprintf("%04d-%s.patch", session.NextSeq, slugify(description))
	patchPath := filepath.Join(e.customDir(), filename)
	if err := os.WriteFile(patchPath, []byte(patch), 0o644); err != nil {
		return nil, newErr(KindIO, "customize_commit").withErr(err)
	}

	mod := CustomModification{
		Description:   description,
		AppliedAt:     nowRFC3339(),
		FilesModified: changed,
		PatchFile:     filepath.Join(g2Dir, customDirName, filename),
	}
	st.CustomModifications = append(st.CustomModifications, mod)
	st.CustomizeSession = nil
	if err := e.writeState(st); err != nil {
		return nil, err
	}
	if err := e.ClearBackup(); err != nil {
		return nil, err
	}
	return &mod, nil
}

// CustomizeAbort discards an open session, reverting every touched file to
// its pre-session content.
func (e *Engine) CustomizeAbort() error {
	st, err := e.ReadState()
	if err != nil {
		return err
	}
	if st.CustomizeSession == nil {
		return newErr(KindPrecondition, "customize_abort")
	}
	if err := e.RestoreBackup(); err != nil {
		return err
	}
	st.CustomizeSession = nil
	return e.writeState(st)
}
