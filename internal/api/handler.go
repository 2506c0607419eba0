package api

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/ledgerparse/internal/extractor"
	"github.com/insightdelivered/ledgerparse/internal/models"
	"github.com/insightdelivered/ledgerparse/internal/parser"
	"github.com/insightdelivered/ledgerparse/internal/writer"
)

// Version of the extraction service.
const Version = "1.0.0"

// Server wires the extraction engine into the HTTP transport. The engine
// holds no cross-request state, so one Server handles concurrent requests
// without locking.
type Server struct {
	engine *parser.Engine
	log    *slog.Logger
}

// NewServer returns a Server around the given engine.
func NewServer(engine *parser.Engine, log *slog.Logger) *Server {
	return &Server{engine: engine, log: log}
}

// Register sets up the HTTP routes.
func (s *Server) Register(app *fiber.App) {
	app.Use(s.requestLogger())
	app.Get("/api/health", s.handleHealth)
	app.Post("/api/extract/native", s.handleNative)
	app.Post("/api/extract/tesseract", s.handleTesseract)
	app.Post("/api/extract/easyocr", s.handleEasyOCR)
	app.Post("/api/extract/gmft", s.handleTable)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("X-Request-ID", id)

		start := time.Now()
		err := c.Next()
		s.log.Info("request",
			"id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		)
		return err
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "ledgerparse",
		"version": Version,
	})
}

// handleNative accepts a PDF upload and extracts transactions from its
// native text layer.
func (s *Server) handleNative(c *fiber.Ctx) error {
	path, cleanup, err := s.saveUpload(c)
	if err != nil {
		return uploadError(c, err)
	}
	defer cleanup()

	pages, err := extractor.ExtractWords(path)
	if err != nil {
		// Document-level failure, not a transport error.
		return s.respond(c, failure(models.MethodNative, err))
	}
	return s.respond(c, s.engine.ExtractNative(pages))
}

// handleTesseract accepts either a JSON payload of per-page word grids
// (the OCR collaborator's output) or, as a convenience when the OCR tools
// are installed locally, a PDF upload that is rasterized and recognized
// server-side.
func (s *Server) handleTesseract(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		path, cleanup, err := s.saveUpload(c)
		if err != nil {
			return uploadError(c, err)
		}
		defer cleanup()

		grids, err := extractor.RunTesseract(path)
		if err != nil {
			return s.respond(c, failure(models.MethodTesseract, err))
		}
		return s.respond(c, s.engine.ExtractTesseract(grids))
	}

	var body struct {
		Pages []parser.WordGrid `json:"pages"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid JSON payload: "+err.Error())
	}
	return s.respond(c, s.engine.ExtractTesseract(body.Pages))
}

// handleEasyOCR accepts a JSON payload of per-page box detections.
func (s *Server) handleEasyOCR(c *fiber.Ctx) error {
	var body struct {
		Pages [][]parser.OCRBox `json:"pages"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid JSON payload: "+err.Error())
	}
	return s.respond(c, s.engine.ExtractEasyOCR(body.Pages))
}

// handleTable accepts a JSON payload of structured table rows.
func (s *Server) handleTable(c *fiber.Ctx) error {
	var body struct {
		Rows      []parser.TableRow `json:"rows"`
		PageCount int               `json:"page_count"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid JSON payload: "+err.Error())
	}
	return s.respond(c, s.engine.ExtractTable(body.Rows, body.PageCount))
}

// saveUpload stores the multipart "file" field in a temp file and returns
// its path with a cleanup func. Errors are fiber.Errors carrying the
// status code for uploadError to render.
func (s *Server) saveUpload(c *fiber.Ctx) (string, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "only PDF files are supported")
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusInternalServerError, "failed to create temp file")
	}
	tmp.Close()

	if err := c.SaveFile(header, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fiber.NewError(fiber.StatusInternalServerError, "failed to save uploaded file")
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func uploadError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// respond serializes the extraction result unchanged — no shaping happens
// at this boundary. format=csv selects a CSV rendering of the transaction
// list instead.
func (s *Server) respond(c *fiber.Ctx, result models.ExtractionResult) error {
	if !result.Success {
		s.log.Warn("extraction failed", "method", result.Method, "errors", result.Errors)
	}

	if format := c.Query("format", c.FormValue("format")); format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv")
		w := &writer.CSVWriter{IncludeSummary: true}
		return w.Write(c.Response().BodyWriter(), &result)
	}
	return c.JSON(result)
}

func failure(method models.Method, err error) models.ExtractionResult {
	return models.ExtractionResult{
		Success:      false,
		Method:       method,
		Transactions: []models.Transaction{},
		Errors:       []string{err.Error()},
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
