package downloads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/storage"
)

var ErrNoFile = errors.New("automation has no downloadable file")

// File is what the user receives for a recorded download: either a URL to
// follow or an inline JSON document.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"`
	Content     []byte `json:"-"`
}

func (f *File) IsRedirect() bool {
	return f.URL != ""
}

type FileMaterializer interface {
	Materialize(ctx context.Context, a *model.Automation) (*File, error)
}

// Materializer resolves the file reference of an automation. s3:// URLs are
// presigned, http(s) URLs are handed out as is, and automations without a
// file reference get their workflow JSON as a <slug>.json attachment.
type Materializer struct {
	signer storage.URLSigner
}

func NewMaterializer(signer storage.URLSigner) *Materializer {
	return &Materializer{signer: signer}
}

func (m *Materializer) Materialize(ctx context.Context, a *model.Automation) (*File, error) {
	name := Slug(a.Title) + ".json"

	if a.FileURL != "" {
		if bucket, key, ok := storage.ParseS3URL(a.FileURL); ok {
			if m.signer == nil {
				return nil, fmt.Errorf("s3 signer: %w", common.ErrMisconfigured)
			}
			u, err := m.signer.SignGet(ctx, bucket, key)
			if err != nil {
				return nil, err
			}
			return &File{Name: name, URL: u}, nil
		}

		u, err := url.Parse(a.FileURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("unsupported file reference %q", a.FileURL)
		}
		return &File{Name: name, URL: a.FileURL}, nil
	}

	if len(a.WorkflowJSON) == 0 || string(a.WorkflowJSON) == "null" {
		return nil, ErrNoFile
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, a.WorkflowJSON, "", "  "); err != nil {
		return nil, fmt.Errorf("workflow payload is not valid JSON: %w", err)
	}
	return &File{Name: name, ContentType: "application/json", Content: buf.Bytes()}, nil
}

// Slug lowercases title and joins its alphanumeric runs with dashes.
func Slug(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if sb.Len() == 0 {
		return "automation"
	}
	return sb.String()
}
