package manifest

import (
	"bufio"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rotlab/domain/core"
	"rotlab/internal/errors"
)

// HashesFile is the manifest name within a pack directory.
const HashesFile = "hashes.txt"

// Entry pairs a pack-relative path with its expected digests. MD5 may be
// empty when reading manifests written by older kits.
type Entry struct {
	Path   string
	SHA256 string
	MD5    string
}

// FileReport is the integrity outcome for one manifest entry.
type FileReport struct {
	Path     string
	OK       bool
	Expected string
	Actual   string
	Err      error
}

// HashFile computes the SHA-256 and MD5 of a file in one pass.
func HashFile(path string) (sha, md string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	shaH := sha256.New()
	mdH := md5.New()
	if _, err := io.Copy(io.MultiWriter(shaH, mdH), f); err != nil {
		return "", "", err
	}
	return hex.EncodeToString(shaH.Sum(nil)), hex.EncodeToString(mdH.Sum(nil)), nil
}

// Write walks the pack directory and writes hashes.txt listing every file
// (except the manifest itself) with its SHA-256 and MD5, sorted by path so
// the manifest is byte-stable for identical packs. The returned pack hash
// fingerprints the manifest content itself.
func Write(root string) (core.PackHash, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == HashesFile {
			return nil
		}
		sha, md, err := HashFile(path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: rel, SHA256: sha, MD5: md})
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s  %s\n", e.Path, e.SHA256, e.MD5)
	}
	content := []byte(b.String())
	if err := os.WriteFile(filepath.Join(root, HashesFile), content, 0o644); err != nil {
		return "", err
	}
	return core.NewPackHash(content), nil
}

// Read parses a pack's hashes.txt. Lines carry path, SHA-256 and MD5;
// two-field lines (SHA-256 only) are accepted for packs hashed by older kits.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, HashesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			entries = append(entries, Entry{Path: fields[0], SHA256: strings.ToLower(fields[1])})
		case 3:
			entries = append(entries, Entry{
				Path:   fields[0],
				SHA256: strings.ToLower(fields[1]),
				MD5:    strings.ToLower(fields[2]),
			})
		default:
			return nil, fmt.Errorf("malformed manifest line: %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Verify recomputes digests for every manifest entry and reports per-file
// OK/FAIL plus the overall outcome. MD5 is checked whenever the manifest
// carries it. A missing or unreadable file fails its entry rather than
// aborting the whole verification.
func Verify(root string) ([]FileReport, bool, error) {
	entries, err := Read(root)
	if err != nil {
		return nil, false, err
	}

	reports := make([]FileReport, 0, len(entries))
	allOK := true
	for _, e := range entries {
		report := FileReport{Path: e.Path, Expected: e.SHA256}
		sha, md, err := HashFile(filepath.Join(root, filepath.FromSlash(e.Path)))
		if err != nil {
			report.Err = errors.WithCode(errors.CodePackIncomplete, err)
		} else {
			report.Actual = sha
			report.OK = sha == e.SHA256 && (e.MD5 == "" || md == e.MD5)
			if !report.OK {
				report.Err = fmt.Errorf("%w: %s", core.ErrHashMismatch, e.Path)
			}
		}
		if !report.OK {
			allOK = false
		}
		reports = append(reports, report)
	}
	return reports, allOK, nil
}
