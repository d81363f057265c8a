package apitest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddEmailImport seeds an email import and returns its id.
func (s *Server) AddEmailImport(imp model.EmailImport) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if imp.ID == 0 {
		imp.ID = s.id()
	}
	if imp.Status == "" {
		imp.Status = model.EmailAwaitingReview
	}
	s.EmailImports[imp.ID] = &imp
	return imp.ID
}

// AddMailbox seeds a mailbox configuration and returns its id.
func (s *Server) AddMailbox(mb model.MailboxConfig) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mb.ID == 0 {
		mb.ID = s.id()
	}
	s.Mailboxes[mb.ID] = &mb
	return mb.ID
}

func (s *Server) emailRoutes(a *gin.RouterGroup) {
	a.GET("/email-import/mailboxes/", s.listMailboxes)
	a.POST("/email-import/mailboxes/", s.createMailbox)
	a.GET("/email-import/mailboxes/:id/", s.getMailbox)
	a.PUT("/email-import/mailboxes/:id/", s.updateMailbox)
	a.DELETE("/email-import/mailboxes/:id/", s.deleteMailbox)
	a.POST("/email-import/mailboxes/:id/test_connection/", s.testConnection)
	a.POST("/email-import/mailboxes/:id/fetch_emails/", s.fetchEmails)
	a.GET("/email-import/mailboxes/:id/folders/", s.listFolders)

	a.GET("/email-import/imports/", s.listEmailImports)
	a.GET("/email-import/imports/pending_review/", s.pendingReview)
	a.GET("/email-import/imports/statistics/", s.emailStatistics)
	a.POST("/email-import/imports/bulk_delete/", s.bulkDeleteEmailImports)
	a.GET("/email-import/imports/:id/", s.getEmailImport)
	a.POST("/email-import/imports/:id/review/", s.reviewEmailImport)
}

func (s *Server) lookupMailbox(c *gin.Context) (*model.MailboxConfig, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	mb, exists := s.Mailboxes[id]
	if !exists {
		notFound(c)
		return nil, false
	}
	return mb, true
}

func (s *Server) listMailboxes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Mailboxes), s.PageSize))
}

func (s *Server) createMailbox(c *gin.Context) {
	var mb model.MailboxConfig
	if err := c.ShouldBindJSON(&mb); err != nil || mb.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mb.ID = s.id()
	mb.Password = ""
	s.Mailboxes[mb.ID] = &mb
	c.JSON(http.StatusCreated, mb)
}

func (s *Server) getMailbox(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mb, ok := s.lookupMailbox(c); ok {
		c.JSON(http.StatusOK, mb)
	}
}

func (s *Server) updateMailbox(c *gin.Context) {
	var mb model.MailboxConfig
	if err := c.ShouldBindJSON(&mb); err != nil || mb.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.lookupMailbox(c)
	if !ok {
		return
	}
	mb.ID = existing.ID
	mb.Password = ""
	s.Mailboxes[mb.ID] = &mb
	c.JSON(http.StatusOK, mb)
}

func (s *Server) deleteMailbox(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mb, ok := s.lookupMailbox(c); ok {
		delete(s.Mailboxes, mb.ID)
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) testConnection(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mb, ok := s.lookupMailbox(c)
	if !ok {
		return
	}
	if !mb.IsActive {
		c.JSON(http.StatusOK, model.ConnectionTest{Success: false, Message: "Mailbox is niet actief."})
		return
	}
	c.JSON(http.StatusOK, model.ConnectionTest{Success: true, Message: "Verbinding geslaagd."})
}

func (s *Server) fetchEmails(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	s.mu.Lock()
	defer s.mu.Unlock()
	mb, ok := s.lookupMailbox(c)
	if !ok {
		return
	}
	now := time.Date(2025, 8, 25, 8, 0, 0, 0, time.UTC)
	mb.LastFetchAt = &now
	c.JSON(http.StatusOK, model.FetchResult{Fetched: limit, Imported: 0, Skipped: limit, Message: "Geen nieuwe e-mails."})
}

func (s *Server) listFolders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookupMailbox(c); ok {
		c.JSON(http.StatusOK, gin.H{"folders": []string{"INBOX", "INBOX/Facturen", "Archief"}})
	}
}

func (s *Server) listEmailImports(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := model.EmailImportStatus(c.Query("status"))
	mailbox, _ := strconv.Atoi(c.Query("mailbox"))
	var out []model.EmailImport
	for _, imp := range sorted(s.EmailImports) {
		if status != "" && imp.Status != status {
			continue
		}
		if mailbox > 0 && imp.Mailbox != mailbox {
			continue
		}
		out = append(out, imp)
	}
	c.JSON(http.StatusOK, paginate(c, out, s.PageSize))
}

func (s *Server) pendingReview(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.EmailImport{}
	for _, imp := range sorted(s.EmailImports) {
		if imp.Status == model.EmailAwaitingReview {
			out = append(out, imp)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) emailStatistics(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := model.EmailImportStats{ByStatus: map[model.EmailImportStatus]int{}}
	for _, imp := range s.EmailImports {
		stats.Total++
		stats.ByStatus[imp.Status]++
		switch imp.Status {
		case model.EmailAwaitingReview:
			stats.AwaitingReview++
		case model.EmailFailed:
			stats.Failed++
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getEmailImport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, exists := s.EmailImports[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (s *Server) reviewEmailImport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "action", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	imp, exists := s.EmailImports[id]
	if !exists {
		notFound(c)
		return
	}
	if !imp.Status.Reviewable() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Deze import wacht niet op beoordeling."})
		return
	}

	now := time.Date(2025, 8, 25, 11, 0, 0, 0, time.UTC)
	switch req.Action {
	case model.ActionApprove:
		imp.Status = model.EmailApproved
		imp.InvoiceType = req.InvoiceType
	case model.ActionReject:
		imp.Status = model.EmailRejected
	default:
		badRequest(c, "action", "Ongeldige actie.")
		return
	}
	imp.ReviewNotes = req.Notes
	imp.ReviewedAt = &now
	c.JSON(http.StatusOK, imp)
}

func (s *Server) bulkDeleteEmailImports(c *gin.Context) {
	var body model.IDs
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, id := range body.IDs {
		if _, exists := s.EmailImports[id]; exists {
			delete(s.EmailImports, id)
			count++
		}
	}
	c.JSON(http.StatusOK, model.CountResponse{Count: count})
}
