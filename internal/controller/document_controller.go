package controller

import (
	"bytes"
	"errors"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

// Uploaded CVs and job specs are capped at 5MB.
const maxDocumentSize = 5 << 20

type DocumentController struct {
	documentService *service.DocumentService
}

func NewDocumentController(documentService *service.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

type CreateDocumentRequest struct {
	Type    model.DocumentType `json:"type" binding:"required,oneof=cv jobSpec"`
	Title   string             `json:"title" binding:"required,max=100"`
	Content string             `json:"content" binding:"required"`
}

// CreateDocument godoc
// @Summary Create a document with inline text content
// @Tags documents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateDocumentRequest true "document payload"
// @Success 201 {object} util.Response{data=model.Document}
// @Router /documents [post]
func (c *DocumentController) CreateDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.documentService.Create(claims.UserID, req.Type, req.Title, req.Content)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, doc)
}

// UploadDocument godoc
// @Summary Upload a CV or job specification file
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "document file"
// @Param type formData string true "cv or jobSpec"
// @Param title formData string true "document title"
// @Success 201 {object} util.Response{data=model.Document}
// @Router /documents/upload [post]
func (c *DocumentController) UploadDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	docType := model.DocumentType(ctx.PostForm("type"))
	if docType != model.DocumentCV && docType != model.DocumentJobSpec {
		util.BadRequest(ctx, "type must be cv or jobSpec")
		return
	}

	title := ctx.PostForm("title")
	if title == "" || len(title) > 100 {
		util.BadRequest(ctx, "title is required and must be at most 100 characters")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		util.BadRequest(ctx, "file exceeds the 5MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	// Sniff the real content type before trusting the upload.
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]
	mimeType, err := util.ValidateMimeType(bytes.NewReader(head), util.AllowedDocumentMimeTypes)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reader := io.MultiReader(bytes.NewReader(head), file)
	doc, err := c.documentService.Upload(ctx.Request.Context(), claims.UserID, docType, title, fileHeader.Filename, mimeType, reader, fileHeader.Size)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, doc)
}

// ListDocuments godoc
// @Summary List the current user's documents
// @Tags documents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Document}
// @Router /documents [get]
func (c *DocumentController) ListDocuments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	docs, err := c.documentService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"count": len(docs),
		"items": docs,
	})
}

// GetDocument godoc
// @Summary Get one document by id
// @Tags documents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "document id"
// @Success 200 {object} util.Response{data=model.Document}
// @Router /documents/{id} [get]
func (c *DocumentController) GetDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	doc, err := c.documentService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondDocumentError(ctx, err)
		return
	}

	util.Success(ctx, doc)
}

// DeleteDocument godoc
// @Summary Delete one document by id
// @Tags documents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "document id"
// @Success 200 {object} util.Response
// @Router /documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.documentService.Delete(ctx.Request.Context(), ctx.Param("id"), claims.UserID); err != nil {
		respondDocumentError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

func respondDocumentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrDocumentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
