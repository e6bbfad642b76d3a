package middleware

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/storage"
	"github.com/Aqib6220/lms/backend/utils"
)

const localUploads = "uploadedFiles"

// courseFileFields is the fixed multipart contract for course create/update.
var courseFileFields = []string{
	"thumbnail",
	"lessonVideos",
	"lessonNotes",
	"courseSyllabusPdf",
	"courseNotesPdf",
	"coursePreviousPapersPdf",
	"courseNotes",
	"previousPapers",
}

// UploadCourseFiles ingests every file of the course multipart contract into
// the media store and attaches the resulting descriptors to the request.
func UploadCourseFiles(store *storage.MediaStore) fiber.Handler {
	return uploadFields(store, storage.TargetCourse, courseFileFields)
}

// UploadSingle ingests one named file field (e.g. profilePicture, video, pdf).
func UploadSingle(store *storage.MediaStore, field string, target storage.Target) fiber.Handler {
	return uploadFields(store, target, []string{field})
}

func uploadFields(store *storage.MediaStore, target storage.Target, fields []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || form == nil {
			// Not a multipart request; nothing to ingest.
			return c.Next()
		}

		// Merge with descriptors attached by an earlier upload stage.
		uploaded := Files(c)
		if uploaded == nil {
			uploaded = map[string][]storage.UploadedFile{}
		}

		for _, field := range fields {
			for _, header := range form.File[field] {
				if header.Size > config.MaxUploadSize {
					CleanupUploads(c, store)
					return utils.Fail(c, fiber.StatusBadRequest, "File too large: "+header.Filename)
				}

				mimeType := header.Header.Get("Content-Type")
				if mimeType == "" || mimeType == "application/octet-stream" {
					if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
						mimeType = byExt
					}
				}

				file, err := header.Open()
				if err != nil {
					CleanupUploads(c, store)
					return utils.Fail(c, fiber.StatusInternalServerError, "Could not read uploaded file")
				}

				url, err := store.Upload(c.Context(), file, header.Filename, mimeType, target)
				file.Close()
				if err != nil {
					CleanupUploads(c, store)
					return utils.FailErr(c, utils.Wrap(utils.ErrStorage, "File upload failed: "+err.Error()))
				}

				uploaded[field] = append(uploaded[field], storage.UploadedFile{
					FieldName: field,
					FileName:  header.Filename,
					MimeType:  mimeType,
					URL:       url,
				})
				c.Locals(localUploads, uploaded)
			}
		}

		return c.Next()
	}
}

// Files returns the uploaded-file descriptors attached by the upload stage.
func Files(c *fiber.Ctx) map[string][]storage.UploadedFile {
	if v, ok := c.Locals(localUploads).(map[string][]storage.UploadedFile); ok {
		return v
	}
	return nil
}

// FirstFileURL returns the URL of the first file uploaded under field, or "".
func FirstFileURL(c *fiber.Ctx, field string) string {
	files := Files(c)[field]
	if len(files) == 0 {
		return ""
	}
	return files[0].URL
}

// CleanupUploads best-effort deletes every file already uploaded for this
// request. Used when a flow aborts after its files reached the store.
func CleanupUploads(c *fiber.Ctx, store *storage.MediaStore) {
	for _, files := range Files(c) {
		for _, f := range files {
			hint := "raw"
			switch {
			case strings.HasPrefix(f.MimeType, "video/"):
				hint = "video"
			case strings.HasPrefix(f.MimeType, "image/"):
				hint = "image"
			}
			store.Delete(c.Context(), f.URL, hint)
		}
	}
}
