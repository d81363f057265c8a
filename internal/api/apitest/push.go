package apitest

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddGroup seeds a notification group and returns its id.
func (s *Server) AddGroup(group model.NotificationGroup) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.ID == 0 {
		group.ID = s.id()
	}
	s.Groups[group.ID] = &group
	return group.ID
}

// AddSchedule seeds a notification schedule and returns its id.
func (s *Server) AddSchedule(schedule model.NotificationSchedule) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if schedule.ID == 0 {
		schedule.ID = s.id()
	}
	s.Schedules[schedule.ID] = &schedule
	return schedule.ID
}

// AddSent seeds a send-history entry and returns its id.
func (s *Server) AddSent(sent model.SentNotification) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sent.ID == 0 {
		sent.ID = s.id()
	}
	s.Sent[sent.ID] = &sent
	return sent.ID
}

func (s *Server) pushRoutes(a *gin.RouterGroup) {
	a.GET("/push/settings/", s.getPushSettings)
	a.PATCH("/push/settings/", s.updatePushSettings)
	a.POST("/push/settings/generate_vapid_keys/", s.generateVAPIDKeys)

	a.GET("/push/groups/", s.listGroups)
	a.POST("/push/groups/", s.createGroup)
	a.GET("/push/groups/:id/", s.getGroup)
	a.PUT("/push/groups/:id/", s.updateGroup)
	a.DELETE("/push/groups/:id/", s.deleteGroup)
	a.POST("/push/groups/:id/add_members/", s.changeMembers(true))
	a.POST("/push/groups/:id/remove_members/", s.changeMembers(false))

	a.GET("/push/schedules/", s.listSchedules)
	a.POST("/push/schedules/", s.createSchedule)
	a.GET("/push/schedules/:id/", s.getSchedule)
	a.PUT("/push/schedules/:id/", s.updateSchedule)
	a.DELETE("/push/schedules/:id/", s.deleteSchedule)
	a.POST("/push/schedules/:id/send_now/", s.sendNow)

	a.GET("/push/sent/", s.listSent)
	a.POST("/push/sent/bulk_delete/", s.bulkDeleteSent)
	a.POST("/push/sent/clear_old/", s.clearOldSent)
}

func (s *Server) getPushSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.PushSettings)
}

func (s *Server) updatePushSettings(c *gin.Context) {
	var settings model.PushSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.ID = s.PushSettings.ID
	settings.VAPIDPrivateKey = ""
	s.PushSettings = settings
	c.JSON(http.StatusOK, s.PushSettings)
}

func (s *Server) generateVAPIDKeys(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := model.VAPIDKeys{PublicKey: "BPublicKeyForTests", PrivateKey: "privateKeyForTests"}
	s.PushSettings.VAPIDPublicKey = keys.PublicKey
	c.JSON(http.StatusOK, keys)
}

func (s *Server) listGroups(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Groups), s.PageSize))
}

func (s *Server) createGroup(c *gin.Context) {
	var group model.NotificationGroup
	if err := c.ShouldBindJSON(&group); err != nil || group.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	group.ID = s.id()
	if group.MemberIDs == nil {
		group.MemberIDs = []int{}
	}
	s.Groups[group.ID] = &group
	c.JSON(http.StatusCreated, group)
}

func (s *Server) getGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	group, exists := s.Groups[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) updateGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var group model.NotificationGroup
	if err := c.ShouldBindJSON(&group); err != nil || group.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Groups[id]; !exists {
		notFound(c)
		return
	}
	group.ID = id
	if group.MemberIDs == nil {
		group.MemberIDs = []int{}
	}
	s.Groups[id] = &group
	c.JSON(http.StatusOK, group)
}

func (s *Server) deleteGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Groups[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Groups, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) changeMembers(add bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var body model.MemberChange
		if err := c.ShouldBindJSON(&body); err != nil || len(body.UserIDs) == 0 {
			badRequest(c, "user_ids", "Kies minimaal één gebruiker.")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		group, exists := s.Groups[id]
		if !exists {
			notFound(c)
			return
		}

		members := map[int]bool{}
		for _, m := range group.MemberIDs {
			members[m] = true
		}
		for _, u := range body.UserIDs {
			members[u] = add
		}
		group.MemberIDs = []int{}
		for m := range members {
			if members[m] {
				group.MemberIDs = append(group.MemberIDs, m)
			}
		}
		sort.Ints(group.MemberIDs)
		c.JSON(http.StatusOK, group)
	}
}

// validateSchedule mirrors the backend serializer rules.
func validateSchedule(c *gin.Context, schedule model.NotificationSchedule) bool {
	switch schedule.Frequency {
	case model.FrequencyDaily:
	case model.FrequencyWeekly:
		if schedule.WeeklyDay == nil || *schedule.WeeklyDay < 0 || *schedule.WeeklyDay > 6 {
			badRequest(c, "weekly_day", "Kies een dag voor wekelijkse meldingen.")
			return false
		}
	case model.FrequencyCustom:
		if len(schedule.CustomDays) == 0 {
			badRequest(c, "custom_days", "Kies minimaal één dag.")
			return false
		}
	default:
		badRequest(c, "frequency", "Ongeldige frequentie.")
		return false
	}
	if _, err := time.Parse("15:04", schedule.SendTime); err != nil {
		badRequest(c, "send_time", "Ongeldige tijd.")
		return false
	}
	return true
}

func (s *Server) listSchedules(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Schedules), s.PageSize))
}

func (s *Server) createSchedule(c *gin.Context) {
	var schedule model.NotificationSchedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if !validateSchedule(c, schedule) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule.ID = s.id()
	s.Schedules[schedule.ID] = &schedule
	c.JSON(http.StatusCreated, schedule)
}

func (s *Server) getSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, exists := s.Schedules[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (s *Server) updateSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var schedule model.NotificationSchedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if !validateSchedule(c, schedule) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Schedules[id]; !exists {
		notFound(c)
		return
	}
	schedule.ID = id
	s.Schedules[id] = &schedule
	c.JSON(http.StatusOK, schedule)
}

func (s *Server) deleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Schedules[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Schedules, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) sendNow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, exists := s.Schedules[id]
	if !exists {
		notFound(c)
		return
	}

	now := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)
	sent := &model.SentNotification{
		ID:         s.id(),
		SentAt:     now,
		Title:      schedule.Title,
		Body:       schedule.Body,
		Schedule:   &schedule.ID,
		Recipients: []model.Receipt{},
	}
	if group, exists := s.Groups[schedule.GroupID]; exists {
		for _, member := range group.MemberIDs {
			sent.Recipients = append(sent.Recipients, model.Receipt{UserID: member})
		}
	}
	schedule.LastSentAt = &now
	s.Sent[sent.ID] = sent
	c.JSON(http.StatusOK, sent)
}

func (s *Server) listSent(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Sent), s.PageSize))
}

func (s *Server) bulkDeleteSent(c *gin.Context) {
	var body model.IDs
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, id := range body.IDs {
		if _, exists := s.Sent[id]; exists {
			delete(s.Sent, id)
			count++
		}
	}
	c.JSON(http.StatusOK, model.CountResponse{Count: count})
}

func (s *Server) clearOldSent(c *gin.Context) {
	var req model.ClearOldRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Days < 1 {
		badRequest(c, "days", "Moet minimaal 1 zijn.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -req.Days)
	count := 0
	for id, sent := range s.Sent {
		if sent.SentAt.Before(cutoff) {
			delete(s.Sent, id)
			count++
		}
	}
	c.JSON(http.StatusOK, model.CountResponse{Count: count})
}
