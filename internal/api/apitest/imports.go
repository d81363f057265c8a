package apitest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddImport seeds an OCR import and returns its id.
func (s *Server) AddImport(imp model.InvoiceImport) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if imp.ID == 0 {
		imp.ID = s.id()
	}
	if imp.Status == "" {
		imp.Status = model.ImportExtracted
	}
	if imp.UserCorrections == nil {
		imp.UserCorrections = model.Corrections{}
	}
	s.Imports[imp.ID] = &imp
	return imp.ID
}

func (s *Server) importRoutes(a *gin.RouterGroup) {
	a.GET("/invoice-import/imports/", s.listImports)
	a.POST("/invoice-import/imports/upload/", s.uploadImport)
	a.POST("/invoice-import/imports/bulk_delete/", s.bulkDeleteImports)
	a.POST("/invoice-import/imports/bulk_convert/", s.bulkConvert)
	a.GET("/invoice-import/imports/:id/", s.getImport)
	a.DELETE("/invoice-import/imports/:id/", s.deleteImport)
	a.POST("/invoice-import/imports/:id/corrections/", s.saveCorrections)
	a.POST("/invoice-import/imports/:id/extract_region/", s.extractRegion)
	a.POST("/invoice-import/imports/:id/convert/", s.convertImport)
	a.POST("/invoice-import/imports/:id/update_lines/", s.updateLines)
	a.GET("/invoice-import/imports/:id/page/:page/", s.importPage)

	a.GET("/invoice-import/patterns/", s.listPatterns)
	a.POST("/invoice-import/patterns/", s.createPattern)
	a.GET("/invoice-import/patterns/:id/", s.getPattern)
	a.DELETE("/invoice-import/patterns/:id/", s.deletePattern)
	a.POST("/invoice-import/patterns/:id/test/", s.testPattern)
}

// lookupImport resolves :id under the lock; it writes a 404 when missing.
func (s *Server) lookupImport(c *gin.Context) (*model.InvoiceImport, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	imp, exists := s.Imports[id]
	if !exists {
		notFound(c)
		return nil, false
	}
	return imp, true
}

func (s *Server) listImports(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := model.ImportStatus(c.Query("status"))
	search := strings.ToLower(c.Query("search"))
	var out []model.InvoiceImport
	for _, imp := range sorted(s.Imports) {
		if status != "" && imp.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(imp.FileName), search) {
			continue
		}
		out = append(out, imp)
	}
	c.JSON(http.StatusOK, paginate(c, out, s.PageSize))
}

func (s *Server) uploadImport(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file", "Er is geen bestand verstuurd.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	imp := &model.InvoiceImport{
		ID:              s.id(),
		FileName:        header.Filename,
		FileSize:        header.Size,
		ContentType:     "application/pdf",
		Status:          model.ImportPending,
		UserCorrections: model.Corrections{},
	}
	s.Imports[imp.ID] = imp
	c.JSON(http.StatusCreated, imp)
}

func (s *Server) getImport(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if imp, ok := s.lookupImport(c); ok {
		c.JSON(http.StatusOK, imp)
	}
}

func (s *Server) deleteImport(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if imp, ok := s.lookupImport(c); ok {
		delete(s.Imports, imp.ID)
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) saveCorrections(c *gin.Context) {
	var corrections model.Corrections
	if err := c.ShouldBindJSON(&corrections); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, ok := s.lookupImport(c)
	if !ok {
		return
	}
	s.Corrections[imp.ID] = append(s.Corrections[imp.ID], corrections)
	for field, correction := range corrections {
		imp.UserCorrections[field] = correction
	}
	imp.Status = model.ImportReview
	c.JSON(http.StatusOK, imp)
}

func (s *Server) extractRegion(c *gin.Context) {
	var req model.RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		badRequest(c, "width", "Selectie is te klein.")
		return
	}

	s.mu.Lock()
	imp, ok := s.lookupImport(c)
	regionText := s.RegionText
	s.mu.Unlock()
	if !ok {
		return
	}

	text, err := regionText(imp.ID, req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RegionResponse{Text: text, Confidence: 0.9})
}

func (s *Server) convertImport(c *gin.Context) {
	var data model.ConvertToInvoiceData
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, ok := s.lookupImport(c)
	if !ok {
		return
	}
	if imp.Status == model.ImportCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Import is al omgezet."})
		return
	}

	s.Conversions[imp.ID] = append(s.Conversions[imp.ID], data)
	imp.Status = model.ImportCompleted
	created := 1000 + imp.ID
	resp := model.ConvertResponse{Detail: "Omgezet."}
	if data.Target == model.TargetExpense {
		imp.ExpenseID = &created
		resp.ExpenseID = &created
	} else {
		imp.InvoiceID = &created
		resp.InvoiceID = &created
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) updateLines(c *gin.Context) {
	var body struct {
		Lines []model.ImportedLine `json:"lines"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "lines", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, ok := s.lookupImport(c)
	if !ok {
		return
	}
	imp.ExtractedData.Lines = body.Lines
	c.JSON(http.StatusOK, imp)
}

func (s *Server) importPage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, ok := s.lookupImport(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 || page > max(imp.PageCount, 1) {
		notFound(c)
		return
	}
	c.Data(http.StatusOK, "image/png", s.PageImage)
}

func (s *Server) bulkDeleteImports(c *gin.Context) {
	var body model.IDs
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, id := range body.IDs {
		if _, exists := s.Imports[id]; exists {
			delete(s.Imports, id)
			count++
		}
	}
	c.JSON(http.StatusOK, model.CountResponse{Count: count})
}

func (s *Server) bulkConvert(c *gin.Context) {
	var body struct {
		Target      model.ConversionTarget `json:"target"`
		InvoiceType model.InvoiceType      `json:"invoice_type"`
		IDs         []int                  `json:"ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := model.BulkConvertResponse{Converted: []int{}, Errors: map[string]string{}}
	for _, id := range body.IDs {
		imp, exists := s.Imports[id]
		switch {
		case !exists:
			resp.Errors[strconv.Itoa(id)] = "Niet gevonden."
		case !imp.Status.Editable():
			resp.Errors[strconv.Itoa(id)] = "Import is niet gereed."
		default:
			imp.Status = model.ImportCompleted
			resp.Converted = append(resp.Converted, id)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listPatterns(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Patterns), s.PageSize))
}

func (s *Server) createPattern(c *gin.Context) {
	var p model.ExtractionPattern
	if err := c.ShouldBindJSON(&p); err != nil || p.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.Patterns[p.ID] = &p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getPattern(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.Patterns[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePattern(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Patterns[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Patterns, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) testPattern(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := c.FormFile("file"); err != nil {
		badRequest(c, "file", "Er is geen bestand verstuurd.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.Patterns[id]
	if !exists {
		notFound(c)
		return
	}
	extracted := model.Fields{}
	for field := range p.FieldRegexes {
		extracted[field] = "match:" + field
	}
	c.JSON(http.StatusOK, model.PatternTestResult{Extracted: extracted, Confidence: 0.75})
}
