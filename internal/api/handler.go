// Package api exposes the combine operation over HTTP: statement files are
// uploaded as multipart form data and the combined per-account CSV comes
// back as JSON.
package api

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/combine"
	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/writer"
)

// CombineResponse is the JSON response of the /api/combine endpoint.
type CombineResponse struct {
	Success  bool                     `json:"success"`
	Error    string                   `json:"error,omitempty"`
	Accounts map[string]AccountResult `json:"accounts,omitempty"`
	Failures []string                 `json:"failures,omitempty"`
}

// AccountResult is one account's combined ledger.
type AccountResult struct {
	CSV   string `json:"csv"`
	Count int    `json:"count"`
}

// Handler holds the HTTP handlers of the combine API.
type Handler struct {
	ConfigDir string
	Log       zerolog.Logger
}

// Register sets up the API routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.Health)
	app.Post("/api/combine", h.Combine)
}

// Health reports service liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// Combine accepts multipart "files" plus "flavour_in", "flavour_out" and an
// optional "plug_gaps" form value, runs the full pipeline and returns the
// combined CSV per account.
func (h *Handler) Combine(c *fiber.Ctx) error {
	log := h.Log.With().Str("request_id", uuid.NewString()).Logger()

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return writeError(c, fiber.StatusBadRequest, "no statement files uploaded, use form field 'files'")
	}

	flavourIn := c.FormValue("flavour_in")
	flavourOut := c.FormValue("flavour_out")
	if flavourIn == "" || flavourOut == "" {
		return writeError(c, fiber.StatusBadRequest, "flavour_in and flavour_out are required")
	}

	outFlavour, err := flavour.LoadOutput(h.ConfigDir, "csv", flavourOut)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("output flavour: %v", err))
	}

	// The parser works on files keyed by extension, so the uploads are
	// spooled to a temporary directory under their original names.
	tmpDir, err := os.MkdirTemp("", "statements-")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "failed to create upload directory")
	}
	defer os.RemoveAll(tmpDir)

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		dst := filepath.Join(tmpDir, filepath.Base(fh.Filename))
		if err := c.SaveFile(fh, dst); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("failed to save %s", fh.Filename))
		}
		paths = append(paths, dst)
	}

	opts := combine.Options{
		ConfigDir: h.ConfigDir,
		FlavourIn: flavourIn,
		PlugGaps:  c.FormValue("plug_gaps") == "true",
	}

	accounts, failures := combine.ProcessFiles(paths, opts, log)

	resp := CombineResponse{
		Success:  true,
		Accounts: make(map[string]AccountResult, len(accounts)),
	}
	for _, failure := range failures {
		log.Error().Err(failure.Err).Str("file", filepath.Base(failure.File)).Msg("input file failed")
		resp.Failures = append(resp.Failures, fmt.Sprintf("%s: %v", filepath.Base(failure.File), failure.Err))
	}

	for accountUID, statements := range accounts {
		combined, err := combine.CombineAccount(accountUID, statements, opts, log)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("account %s: %v", accountUID, err))
		}
		var buf bytes.Buffer
		if err := writer.Write(&buf, combined, outFlavour); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("account %s: %v", accountUID, err))
		}
		resp.Accounts[accountUID] = AccountResult{CSV: buf.String(), Count: len(combined)}
	}

	if len(resp.Accounts) == 0 && len(resp.Failures) > 0 {
		resp.Success = false
	}
	return c.JSON(resp)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(CombineResponse{Success: false, Error: msg})
}
