// Package manifest turns a TeraBox share link into a flat list of files with
// direct download links, expanding folders eagerly or returning them as
// continuations for follow-up calls.
package manifest

import (
	"net/url"

	"TeraLink/internal/helpers"
	"TeraLink/internal/terabox"
)

const DIRECTORY_SIZE_LABEL = "Directory"

// Continuation carries everything needed to list one directory later
// without fetching the share page again.
type Continuation struct {
	Path     string `json:"path"`
	Folder   string `json:"folder"`
	JsToken  string `json:"jsToken"`
	ShortURL string `json:"shorturl"`
	FetchURL string `json:"fetch_url"`
}

func newContinuation(share terabox.ShareContext, dir, folder string) *Continuation {
	query := url.Values{}
	query.Set("path", dir)
	query.Set("jsToken", share.JsToken)
	query.Set("shorturl", share.ShortURL)
	query.Set("folder", folder)
	return &Continuation{
		Path:     dir,
		Folder:   folder,
		JsToken:  share.JsToken,
		ShortURL: share.ShortURL,
		FetchURL: "/api/directory?" + query.Encode(),
	}
}

// Share returns the share context the continuation was issued for.
func (c Continuation) Share() terabox.ShareContext {
	return terabox.ShareContext{JsToken: c.JsToken, ShortURL: c.ShortURL}
}

// FileRecord is one output row. Directories carry a Continuation instead of a URL.
type FileRecord struct {
	Filename     string        `json:"filename"`
	Path         string        `json:"path"`
	Size         string        `json:"size"`
	SizeBytes    int64         `json:"size_bytes"`
	URL          string        `json:"url,omitempty"`
	IsDir        bool          `json:"isdir"`
	Continuation *Continuation `json:"continuation,omitempty"`
}

type Meta struct {
	JsToken  string           `json:"jsToken"`
	ShortURL string           `json:"shorturl"`
	Mode     helpers.ListMode `json:"mode"`
}

// Manifest is the success response body.
type Manifest struct {
	Status     string       `json:"status"`
	Directory  string       `json:"directory,omitempty"`
	TotalSize  string       `json:"total_size"`
	TotalBytes int64        `json:"total_bytes"`
	FileCount  int          `json:"file_count"`
	DirCount   int          `json:"dir_count"`
	Files      []FileRecord `json:"files"`
	Meta       *Meta        `json:"_meta,omitempty"`
}

func newManifest() *Manifest {
	return &Manifest{
		Status:    "success",
		TotalSize: helpers.FormatFileSize(0),
		Files:     make([]FileRecord, 0),
	}
}

// add appends a record; only files count towards FileCount and TotalBytes.
func (m *Manifest) add(rec FileRecord) {
	m.Files = append(m.Files, rec)
	if rec.IsDir {
		m.DirCount++
		return
	}
	m.FileCount++
	m.TotalBytes += rec.SizeBytes
	m.TotalSize = helpers.FormatFileSize(m.TotalBytes)
}

func fileRecord(entry *terabox.ListEntry, folder string) FileRecord {
	size := entry.Size
	if size < 0 {
		size = 0
	}
	return FileRecord{
		Filename:  entry.ServerFilename,
		Path:      folder,
		Size:      helpers.FormatFileSize(size),
		SizeBytes: size,
		URL:       entry.Dlink,
	}
}

func directoryRecord(entry *terabox.ListEntry, folder, childFolder string, share terabox.ShareContext) FileRecord {
	return FileRecord{
		Filename:     entry.ServerFilename,
		Path:         folder,
		Size:         DIRECTORY_SIZE_LABEL,
		IsDir:        true,
		Continuation: newContinuation(share, entry.Path, childFolder),
	}
}
