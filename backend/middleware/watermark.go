package middleware

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/storage"
	"github.com/Aqib6220/lms/backend/utils"
)

// WatermarkPDFs overlays the configured watermark text on every PDF uploaded
// in this request. Each PDF is fetched from its just-assigned URL,
// watermarked, re-uploaded under the same public id so references stay
// valid, and its in-flight descriptor is updated before the controller runs.
// Any failure aborts the whole request; temp files are removed either way.
func WatermarkPDFs(store *storage.MediaStore, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, files := range Files(c) {
			for i := range files {
				f := &files[i]
				if !f.IsPDF() || f.URL == "" {
					continue
				}

				newURL, err := watermarkOne(c, store, cfg.WatermarkText, f.URL)
				if err != nil {
					return utils.Fail(c, fiber.StatusInternalServerError, "PDF watermarking failed: "+err.Error())
				}
				f.URL = newURL
			}
		}
		return c.Next()
	}
}

func watermarkOne(c *fiber.Ctx, store *storage.MediaStore, text, fileURL string) (string, error) {
	tmpFile := filepath.Join(os.TempDir(), uuid.NewString()+".pdf")
	defer os.Remove(tmpFile)

	if err := download(fileURL, tmpFile); err != nil {
		return "", err
	}

	watermarked, err := utils.AddTextWatermark(tmpFile, text)
	if err != nil {
		return "", err
	}
	defer os.Remove(watermarked)

	publicID, folder := storage.ExtractPublicIDAndFolder(fileURL)
	if publicID == "" {
		return "", utils.ErrProcessing
	}

	newURL, err := store.ReplacePDF(c.Context(), watermarked, folder, publicID)
	if err != nil {
		return "", err
	}
	return newURL, nil
}

func download(fileURL, dest string) error {
	resp, err := http.Get(fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return utils.ErrProcessing
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
