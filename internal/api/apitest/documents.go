package apitest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddDocument seeds a document and returns its id.
func (s *Server) AddDocument(doc model.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == 0 {
		doc.ID = s.id()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentPending
	}
	s.Documents[doc.ID] = &doc
	return doc.ID
}

// AddSignature seeds a saved signature and returns its id.
func (s *Server) AddSignature(sig model.SavedSignature) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sig.ID == 0 {
		sig.ID = s.id()
	}
	s.Signatures[sig.ID] = &sig
	return sig.ID
}

func (s *Server) documentRoutes(a *gin.RouterGroup) {
	a.GET("/documents/", s.listDocuments)
	a.POST("/documents/", s.uploadDocument)
	a.GET("/documents/:id/", s.getDocument)
	a.DELETE("/documents/:id/", s.deleteDocument)
	a.POST("/documents/:id/sign/", s.signDocument)
	a.GET("/documents/:id/download/", s.downloadDocument)
	a.GET("/documents/:id/download_original/", s.downloadDocument)
	a.GET("/documents/:id/page/:page/", s.documentPage)
	a.POST("/documents/:id/send_email/", s.emailDocument)

	a.GET("/documents/signatures/", s.listSignatures)
	a.POST("/documents/signatures/", s.createSignature)
	a.GET("/documents/signatures/:id/", s.getSignature)
	a.PATCH("/documents/signatures/:id/", s.renameSignature)
	a.DELETE("/documents/signatures/:id/", s.deleteSignature)
	a.POST("/documents/signatures/:id/set_default/", s.setDefaultSignature)
}

func (s *Server) listDocuments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := model.DocumentStatus(c.Query("status"))
	var docs []model.Document
	for _, d := range sorted(s.Documents) {
		if status == "" || d.Status == status {
			docs = append(docs, d)
		}
	}
	c.JSON(http.StatusOK, paginate(c, docs, s.PageSize))
}

func (s *Server) uploadDocument(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		badRequest(c, "title", "Dit veld is verplicht.")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file", "Er is geen bestand verstuurd.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &model.Document{
		ID:          s.id(),
		Title:       title,
		Description: c.PostForm("description"),
		FileName:    header.Filename,
		FileSize:    header.Size,
		Status:      model.DocumentPending,
		PageCount:   1,
		CreatedAt:   time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC),
	}
	s.Documents[doc.ID] = doc
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) getDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, exists := s.Documents[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) deleteDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Documents[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Documents, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) signDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req model.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if req.SignatureImage == "" {
		badRequest(c, "signature_image", "Dit veld is verplicht.")
		return
	}
	if req.SaveSignature && req.SignatureName == "" {
		badRequest(c, "signature_name", "Geef de handtekening een naam.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, exists := s.Documents[id]
	if !exists {
		notFound(c)
		return
	}
	if doc.IsSigned() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Document is al ondertekend."})
		return
	}

	s.Signed[id] = append(s.Signed[id], req)
	now := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
	doc.Status = model.DocumentSigned
	doc.SignedAt = &now
	doc.SignedBy = "Test Gebruiker"

	if req.SaveSignature {
		sig := &model.SavedSignature{ID: s.id(), Name: req.SignatureName, SignatureImage: req.SignatureImage}
		s.Signatures[sig.ID] = sig
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) downloadDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	doc, exists := s.Documents[id]
	s.mu.Unlock()
	if !exists {
		notFound(c)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4\n% fake\n"))
}

func (s *Server) documentPage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, ok := idParam(c, "page")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, exists := s.Documents[id]
	if !exists || page < 1 || page > max(doc.PageCount, 1) {
		notFound(c)
		return
	}
	c.Data(http.StatusOK, "image/png", s.PageImage)
}

func (s *Server) emailDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req model.DocumentEmail
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" {
		badRequest(c, "to", "Voer een geldig e-mailadres in.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Documents[id]; !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "E-mail verzonden."})
}

func (s *Server) listSignatures(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Signatures), s.PageSize))
}

func (s *Server) createSignature(c *gin.Context) {
	var sig model.SavedSignature
	if err := c.ShouldBindJSON(&sig); err != nil || sig.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sig.ID = s.id()
	s.Signatures[sig.ID] = &sig
	c.JSON(http.StatusCreated, sig)
}

func (s *Server) getSignature(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, exists := s.Signatures[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, sig)
}

func (s *Server) renameSignature(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	_ = c.ShouldBindJSON(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	sig, exists := s.Signatures[id]
	if !exists {
		notFound(c)
		return
	}
	if body.Name != "" {
		sig.Name = body.Name
	}
	c.JSON(http.StatusOK, sig)
}

func (s *Server) deleteSignature(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Signatures[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Signatures, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) setDefaultSignature(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Signatures[id]; !exists {
		notFound(c)
		return
	}
	for sigID, sig := range s.Signatures {
		sig.IsDefault = sigID == id
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Standaard handtekening ingesteld."})
}
