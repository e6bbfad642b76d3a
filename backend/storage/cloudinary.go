package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Target selects the folder family an upload belongs to.
type Target int

const (
	TargetCourse Target = iota
	TargetUser
	TargetLesson
)

// UploadedFile describes one file already pushed to the media store,
// as seen by the request pipeline.
type UploadedFile struct {
	FieldName string
	FileName  string
	MimeType  string
	URL       string
}

// IsPDF reports whether the file should go through the watermark stage.
func (f UploadedFile) IsPDF() bool {
	return f.MimeType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(f.FileName), ".pdf")
}

type MediaStore struct {
	cld *cloudinary.Cloudinary
	log *log.Logger
}

func Init(cloudinaryURL string, logger *log.Logger) (*MediaStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &MediaStore{cld: cld, log: logger}, nil
}

// Upload pushes a file into a resource-type-specific folder and returns its
// addressable URL. The resource category is chosen from the mime type, the
// folder from the target context.
func (s *MediaStore) Upload(ctx context.Context, r io.Reader, fileName, mimeType string, target Target) (string, error) {
	params := uploader.UploadParams{
		Overwrite:  api.Bool(true),
		Invalidate: api.Bool(true),
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		params.Folder = "user_profiles"
		if target == TargetCourse {
			params.Folder = "course_images"
		}
		params.PublicID = "img-" + uuid.NewString()
		params.ResourceType = "image"
		if i := strings.Index(mimeType, "/"); i >= 0 {
			params.Format = mimeType[i+1:]
		}

	case strings.HasPrefix(mimeType, "video/"):
		params.Folder = "lesson_videos"
		params.PublicID = "vid-" + uuid.NewString()
		params.ResourceType = "video"
		params.Format = "mp4"

	case mimeType == "text/csv":
		params.Folder = "exam_questions"
		params.PublicID = "csv-" + uuid.NewString()
		params.ResourceType = "raw"

	case mimeType == "application/pdf" || strings.HasSuffix(strings.ToLower(fileName), ".pdf"):
		params.Folder = "lesson_notes"
		if target == TargetCourse {
			params.Folder = "course_pdfs"
		}
		params.PublicID = "pdf-" + uuid.NewString()
		params.ResourceType = "raw"

	default:
		return "", fmt.Errorf("unsupported file type %q", mimeType)
	}

	res, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", err
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	return res.URL, nil
}

// ReplacePDF re-uploads a local PDF under an existing public id (same folder,
// same id) so references held elsewhere stay valid.
func (s *MediaStore) ReplacePDF(ctx context.Context, localPath, folder, publicID string) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "raw",
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	return res.URL, nil
}

var videoExt = regexp.MustCompile(`(?i)\.(mp4|mov|webm|mkv|avi)$`)
var rawExt = regexp.MustCompile(`(?i)\.(pdf|csv)$`)
var versionSegment = regexp.MustCompile(`^v\d+$`)

// GuessResourceType classifies a stored URL as image, video or raw.
func GuessResourceType(rawURL, hint string) string {
	last := rawURL[strings.LastIndex(rawURL, "/")+1:]
	switch {
	case strings.Contains(rawURL, "/video/") || videoExt.MatchString(last):
		return "video"
	case strings.Contains(rawURL, "/raw/") || rawExt.MatchString(last):
		return "raw"
	case hint != "":
		return hint
	default:
		return "image"
	}
}

// PublicIDFromURL derives a bare content identifier from the URL's final
// path segment, stripped of its extension.
func PublicIDFromURL(rawURL string) string {
	last := rawURL[strings.LastIndex(rawURL, "/")+1:]
	if i := strings.Index(last, "."); i >= 0 {
		return last[:i]
	}
	return last
}

// ExtractPublicIDAndFolder splits a delivery URL into the public id and the
// folder it was uploaded under. Both are empty when the URL does not look
// like a store delivery path.
func ExtractPublicIDAndFolder(rawURL string) (publicID, folder string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIdx := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx == len(parts)-1 {
		return "", ""
	}

	idx := uploadIdx + 1
	if idx < len(parts)-1 && versionSegment.MatchString(parts[idx]) {
		idx++
	}

	last := parts[len(parts)-1]
	publicID = strings.TrimSuffix(last, path.Ext(last))
	folder = strings.Join(parts[idx:len(parts)-1], "/")
	return publicID, folder
}

// Delete removes a stored resource by its URL, best effort. It tries a
// small ordered list of folder-prefixed identifiers for the guessed
// resource type, then the bare identifier. Provider errors are swallowed;
// deletion never fails the surrounding request.
func (s *MediaStore) Delete(ctx context.Context, rawURL, resourceTypeHint string) {
	if rawURL == "" {
		return
	}

	publicID := PublicIDFromURL(rawURL)
	resourceType := GuessResourceType(rawURL, resourceTypeHint)

	var folderCandidates []string
	switch resourceType {
	case "video":
		folderCandidates = []string{"lesson_videos"}
	case "raw":
		folderCandidates = []string{"lesson_notes", "course_pdfs", "exam_questions"}
	default:
		folderCandidates = []string{"course_images", "user_profiles", "course_thumbnails", "lesson_notes"}
	}

	for _, folder := range folderCandidates {
		if s.destroy(ctx, folder+"/"+publicID, resourceType) {
			return
		}
	}
	if !s.destroy(ctx, publicID, resourceType) {
		s.log.Printf("failed to destroy media resource: %s", rawURL)
	}
}

func (s *MediaStore) destroy(ctx context.Context, publicID, resourceType string) bool {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return false
	}
	return res.Result == "ok"
}
