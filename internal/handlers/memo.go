package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"frodi/internal/logger"
	"frodi/internal/models"
	"frodi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	genericErrorDetail = "An unexpected error occurred"
	downloadTimeFormat = "2006-01-02_15-04-05"
)

// MemoHandler serves one upload route backed by a memo pipeline.
type MemoHandler struct {
	pipeline       *services.Pipeline
	maxUploadBytes int64
	downloadPrefix string
	now            func() time.Time
}

// NewMemoHandler builds the handler. Word responses are named
// downloadPrefix followed by the local timestamp.
func NewMemoHandler(pipeline *services.Pipeline, maxUploadBytes int64, downloadPrefix string) *MemoHandler {
	return &MemoHandler{
		pipeline:       pipeline,
		maxUploadBytes: maxUploadBytes,
		downloadPrefix: downloadPrefix,
		now:            time.Now,
	}
}

func (h *MemoHandler) Upload(c *gin.Context) {
	route := h.pipeline.Config().Name
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	upload, err := h.readUpload(c)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"route": route,
			"error": err.Error(),
		}).Warn("Invalid upload request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: detailFor(err)})
		return
	}

	req := services.MemoRequest{Upload: upload}
	if h.pipeline.Config().UsesChapters {
		chapters, err := services.ParseChapters(c.PostForm("chapters"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
			return
		}
		req.Chapters = chapters
	}

	outcome := h.pipeline.Run(c.Request.Context(), req)
	switch outcome.Kind {
	case services.OutcomeAccepted:
		if outcome.DocumentPath != "" {
			h.sendDocument(c, outcome.DocumentPath)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", outcome.JSON)
	case services.OutcomeRejected:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: outcome.Rejection.Detail})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: genericErrorDetail})
	}
}

func (h *MemoHandler) sendDocument(c *gin.Context, path string) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("Failed to remove assembled document")
		}
	}()

	filename := h.downloadPrefix + h.now().Format(downloadTimeFormat) + services.DocxExtension
	c.Header("Content-Type", services.DocxMediaType)
	c.FileAttachment(path, filename)
}

func (h *MemoHandler) readUpload(c *gin.Context) (services.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Upload{}, &services.ClientInputError{
				Reason: services.ReasonTooLarge,
				Detail: "The uploaded file is too large.",
			}
		}
		return services.Upload{}, &services.ClientInputError{
			Reason: services.ReasonMissingFile,
			Detail: "A .docx file is required in the 'file' field.",
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return services.Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.Upload{}, err
	}

	return services.Upload{
		Filename:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}

func detailFor(err error) string {
	var clientErr *services.ClientInputError
	if errors.As(err, &clientErr) {
		return clientErr.Detail
	}
	return "Invalid upload."
}
