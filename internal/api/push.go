package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const (
	pushSettingsPath  = "/api/push/settings/"
	pushGroupsPath    = "/api/push/groups/"
	pushSchedulesPath = "/api/push/schedules/"
	pushSentPath      = "/api/push/sent/"
)

// GetPushSettings returns the organisation push settings.
func (c *Client) GetPushSettings(ctx context.Context) (*model.PushSettings, error) {
	var settings model.PushSettings
	if err := c.get(ctx, pushSettingsPath, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdatePushSettings stores the organisation push settings.
func (c *Client) UpdatePushSettings(ctx context.Context, settings model.PushSettings) (*model.PushSettings, error) {
	var updated model.PushSettings
	if err := c.send(ctx, http.MethodPatch, pushSettingsPath, settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GenerateVAPIDKeys asks the backend for a fresh key pair.
func (c *Client) GenerateVAPIDKeys(ctx context.Context) (*model.VAPIDKeys, error) {
	var keys model.VAPIDKeys
	if err := c.send(ctx, http.MethodPost, pushSettingsPath+"generate_vapid_keys/", nil, &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}

// ListGroups returns every notification group.
func (c *Client) ListGroups(ctx context.Context) ([]model.NotificationGroup, error) {
	return collect[model.NotificationGroup](ctx, c, pushGroupsPath, nil)
}

// GetGroup fetches one notification group.
func (c *Client) GetGroup(ctx context.Context, id int) (*model.NotificationGroup, error) {
	var group model.NotificationGroup
	if err := c.get(ctx, fmt.Sprintf("%s%d/", pushGroupsPath, id), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup stores a new notification group.
func (c *Client) CreateGroup(ctx context.Context, group model.NotificationGroup) (*model.NotificationGroup, error) {
	if group.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	var created model.NotificationGroup
	if err := c.send(ctx, http.MethodPost, pushGroupsPath, group, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateGroup replaces a notification group.
func (c *Client) UpdateGroup(ctx context.Context, group model.NotificationGroup) (*model.NotificationGroup, error) {
	var updated model.NotificationGroup
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("%s%d/", pushGroupsPath, group.ID), group, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteGroup removes a notification group.
func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", pushGroupsPath, id), nil, nil)
}

// AddMembers adds users to a group.
func (c *Client) AddMembers(ctx context.Context, groupID int, userIDs []int) (*model.NotificationGroup, error) {
	return c.changeMembers(ctx, groupID, "add_members", userIDs)
}

// RemoveMembers removes users from a group.
func (c *Client) RemoveMembers(ctx context.Context, groupID int, userIDs []int) (*model.NotificationGroup, error) {
	return c.changeMembers(ctx, groupID, "remove_members", userIDs)
}

func (c *Client) changeMembers(ctx context.Context, groupID int, action string, userIDs []int) (*model.NotificationGroup, error) {
	if len(userIDs) == 0 {
		return nil, common.NewValidationError("user_ids", "at least one user is required")
	}
	var group model.NotificationGroup
	path := fmt.Sprintf("%s%d/%s/", pushGroupsPath, groupID, action)
	if err := c.send(ctx, http.MethodPost, path, model.MemberChange{UserIDs: userIDs}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListSchedules returns every notification schedule.
func (c *Client) ListSchedules(ctx context.Context) ([]model.NotificationSchedule, error) {
	return collect[model.NotificationSchedule](ctx, c, pushSchedulesPath, nil)
}

// GetSchedule fetches one notification schedule.
func (c *Client) GetSchedule(ctx context.Context, id int) (*model.NotificationSchedule, error) {
	var schedule model.NotificationSchedule
	if err := c.get(ctx, fmt.Sprintf("%s%d/", pushSchedulesPath, id), nil, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// CreateSchedule stores a new schedule.
func (c *Client) CreateSchedule(ctx context.Context, schedule model.NotificationSchedule) (*model.NotificationSchedule, error) {
	var created model.NotificationSchedule
	if err := c.send(ctx, http.MethodPost, pushSchedulesPath, schedule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSchedule replaces a schedule.
func (c *Client) UpdateSchedule(ctx context.Context, schedule model.NotificationSchedule) (*model.NotificationSchedule, error) {
	var updated model.NotificationSchedule
	path := fmt.Sprintf("%s%d/", pushSchedulesPath, schedule.ID)
	if err := c.send(ctx, http.MethodPut, path, schedule, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", pushSchedulesPath, id), nil, nil)
}

// SendNow dispatches a schedule's notification immediately, whether or not it is active.
func (c *Client) SendNow(ctx context.Context, id int) (*model.SentNotification, error) {
	var sent model.SentNotification
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("%s%d/send_now/", pushSchedulesPath, id), nil, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// ListSent returns one page of the send history.
func (c *Client) ListSent(ctx context.Context, page int) (*model.Page[model.SentNotification], error) {
	var result model.Page[model.SentNotification]
	if err := c.get(ctx, pushSentPath, pageQuery(nil, page), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkDeleteSent deletes history entries and returns how many went.
func (c *Client) BulkDeleteSent(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var resp model.CountResponse
	if err := c.send(ctx, http.MethodPost, pushSentPath+"bulk_delete/", model.IDs{IDs: ids}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// ClearOldSent deletes history older than days and returns how many went.
func (c *Client) ClearOldSent(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, common.NewValidationError("days", "must be at least 1")
	}
	var resp model.CountResponse
	if err := c.send(ctx, http.MethodPost, pushSentPath+"clear_old/", model.ClearOldRequest{Days: days}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
