// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment loads files the user attaches to a message.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
)

// MaxSize caps attachments so a stray path cannot pull a huge file into
// memory.
const MaxSize = 10 * 1024 * 1024

// ErrTooLarge is returned for files above MaxSize.
var ErrTooLarge = errors.New("attachment too large")

// Attachment is a loaded file ready to send.
type Attachment struct {
	FileName string
	MimeType string
	// Data is the base64 encoded file content.
	Data    string
	IsImage bool
	Size    int64
}

// Load reads path and encodes it.
func Load(path string) (*Attachment, error) {
	path = expandHome(strings.TrimSpace(path))
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment %s is a directory", path)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), MaxSize)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	mt := DetectMimeType(filepath.Base(path), raw)
	return &Attachment{
		FileName: filepath.Base(path),
		MimeType: mt,
		Data:     base64.StdEncoding.EncodeToString(raw),
		IsImage:  strings.HasPrefix(mt, "image/"),
		Size:     info.Size(),
	}, nil
}

// DetectMimeType prefers the extension and falls back to sniffing content.
func DetectMimeType(name string, content []byte) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return mt
	}
	mt := http.DetectContentType(content)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

// Meta returns the metadata stored with the user message.
func (a *Attachment) Meta() model.AttachmentMeta {
	return model.AttachmentMeta{
		FileName: a.FileName,
		MimeType: a.MimeType,
		IsImage:  a.IsImage,
	}
}

// DataURL returns the attachment as a data: URL.
func (a *Attachment) DataURL() string {
	return "data:" + a.MimeType + ";base64," + a.Data
}

// Label is the short indicator shown next to the input.
func (a *Attachment) Label() string {
	kind := "file"
	if a.IsImage {
		kind = "image"
	}
	return fmt.Sprintf("%s (%s)", a.FileName, kind)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
