package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Veraticus/kantoor/internal/model"
)

const leaveRequestsPath = "/api/leave/requests/"

// LeaveRequests returns the leave requests overlapping a month.
func (c *Client) LeaveRequests(ctx context.Context, year, month int) ([]model.LeaveRequest, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	return collect[model.LeaveRequest](ctx, c, leaveRequestsPath, query)
}
