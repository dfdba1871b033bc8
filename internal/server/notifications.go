package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h handlers) registerNotifications(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "List notifications, newest first",
	}, func(ctx context.Context, input *struct {
		Unread bool `query:"unread" doc:"Only unread notifications"`
	}) (*struct {
		Body NotificationListResponse `json:"body"`
	}, error) {
		items, err := h.engine.ListNotifications(ctx, input.Unread)
		if err != nil {
			return nil, handleError(err)
		}
		unread := 0
		for _, n := range items {
			if !n.Read {
				unread++
			}
		}
		return &struct {
			Body NotificationListResponse `json:"body"`
		}{Body: NotificationListResponse{Items: orEmpty(items), Unread: unread}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "read-notification",
		Method:      http.MethodPost,
		Path:        "/notifications/{id}/read",
		Summary:     "Mark a notification read",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct{}, error) {
		if err := h.engine.MarkNotificationRead(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "read-all-notifications",
		Method:      http.MethodPost,
		Path:        "/notifications/read-all",
		Summary:     "Mark every notification read",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body CountResponse `json:"body"`
	}, error) {
		n, err := h.engine.MarkAllNotificationsRead(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CountResponse `json:"body"`
		}{Body: CountResponse{Count: n}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-notifications",
		Method:      http.MethodPost,
		Path:        "/notifications/refresh",
		Summary:     "Emit notifications for expired and expiring instruments",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body NotificationListResponse `json:"body"`
	}, error) {
		created, err := h.engine.RefreshDueNotifications(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body NotificationListResponse `json:"body"`
		}{Body: NotificationListResponse{Items: orEmpty(created), Unread: len(created)}}, nil
	})
}
