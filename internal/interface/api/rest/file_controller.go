package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/infrastructure/jwt"
	fileDTO "fileshare-api/internal/interface/api/rest/dto/file"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

// headroom on top of the payload ceiling for multipart boundaries,
// part headers and other form fields
const multipartOverhead = 1 << 20

type FileController struct {
	fileService    ports.FileService
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	maxUploadBytes int64,
) *FileController {
	fc := &FileController{
		fileService:    fileService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}

	auth := middleware.AuthMiddleware(jwtService)

	r.POST(RouteFileUpload, auth, fc.UploadFileHandler)
	r.POST(RouteGroupFiles, auth, fc.UploadGroupFileHandler)
	r.GET(RouteFiles, auth, fc.GetFilesHandler)
	r.GET(RouteFileDownload, auth, fc.DownloadFileHandler)
	r.GET(RoutePublicDownload, fc.PublicDownloadHandler)
	r.PUT(RouteFileShare, auth, fc.ToggleSharingHandler)
	r.DELETE(RouteFile, auth, fc.DeleteFileHandler)

	return fc
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	fc.runUpload(c, actor, nil)
}

func (fc *FileController) UploadGroupFileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	ok, groupID := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id must be a valid UUID"})
		return
	}

	fc.runUpload(c, actor, &groupID)
}

func (fc *FileController) runUpload(c *gin.Context, actor uuid.UUID, groupID *uuid.UUID) {
	// cap the request body before the multipart parser touches it, so an
	// oversized upload is cut off mid-stream instead of being spooled in
	// full and rejected afterwards
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxUploadBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": file.ErrTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fc.fileService.Upload(c.Request.Context(), actor, groupID, fh)
	if err != nil {
		switch {
		case errors.Is(err, file.ErrEmptyFile), errors.Is(err, file.ErrTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, file.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload the file"})
			fc.logger.Error("Upload() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, fileDTO.ToResponseFile(*f))
}

func (fc *FileController) GetFilesHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := fc.fileService.FindOwnerFiles(c.Request.Context(), actor, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get files"})
		fc.logger.Error("FindOwnerFiles() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, fileDTO.ResponseData{
		Data: fileDTO.ToResponseFiles(files),
	})
}

func (fc *FileController) DownloadFileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	fc.runDownload(c, actor, ports.DownloadAuthenticated)
}

// PublicDownloadHandler serves shared files without authentication; every
// denied case is a plain 404 so private ids stay unguessable.
func (fc *FileController) PublicDownloadHandler(c *gin.Context) {
	fc.runDownload(c, uuid.Nil, ports.DownloadPublic)
}

func (fc *FileController) runDownload(c *gin.Context, actor uuid.UUID, mode ports.DownloadMode) {
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	rc, rec, info, err := fc.fileService.Download(c.Request.Context(), actor, fileID, mode)
	if err != nil {
		switch {
		case errors.Is(err, file.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, file.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to download this file"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download the file"})
			fc.logger.Error("Download() error", zap.Error(err))
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", contentDisposition(rec.OriginalName))
	c.DataFromReader(http.StatusOK, info.SizeBytes, info.ContentType, rc, nil)
}

func (fc *FileController) ToggleSharingHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	f, err := fc.fileService.ToggleSharing(c.Request.Context(), actor, fileID)
	if err != nil {
		switch {
		case errors.Is(err, file.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, file.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can change sharing"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update sharing"})
			fc.logger.Error("ToggleSharing() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, fileDTO.ShareResponse{ID: f.UUID, IsPublic: f.IsPublic})
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	if err := fc.fileService.Delete(c.Request.Context(), actor, fileID); err != nil {
		switch {
		case errors.Is(err, file.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, file.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this file"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete the file"})
			fc.logger.Error("Delete() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted successfully"})
}
