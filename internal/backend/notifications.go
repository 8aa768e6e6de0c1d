package backend

import (
	"context"
	"fmt"

	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
)

func (c *Client) ListNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var body struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	res, err := c.request(ctx).
		SetPathParam("userId", userID).
		SetResult(&body).
		Get("/notifications/get-by-user/{userId}")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return body.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := c.request(ctx).
		SetPathParam("id", id).
		Patch("/notifications/mark-read/{id}")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	res, err := c.request(ctx).
		SetPathParam("id", id).
		Delete("/notifications/delete/{id}")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (c *Client) RegisterPushToken(ctx context.Context, reg push.DeviceRegistration) error {
	res, err := c.request(ctx).
		SetBody(reg).
		Post("/notifications/register-fcm-token")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

func (c *Client) RemovePushToken(ctx context.Context, userID, token string) error {
	res, err := c.request(ctx).
		SetBody(map[string]string{
			"userId":   userID,
			"fcmToken": token,
		}).
		Post("/notifications/remove-fcm-token")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to remove push token: %w", err)
	}
	return nil
}

func (c *Client) GetPreferences(ctx context.Context, userID string) (*push.Preferences, error) {
	var body struct {
		Preferences *push.Preferences `json:"preferences"`
	}
	res, err := c.request(ctx).
		SetPathParam("userId", userID).
		SetResult(&body).
		Get("/notifications/preferences/{userId}")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return body.Preferences, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, userID string, patch push.PreferencesPatch) error {
	res, err := c.request(ctx).
		SetPathParam("userId", userID).
		SetBody(patch).
		Patch("/notifications/preferences/{userId}")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

func (c *Client) SendTestPush(ctx context.Context, userID, title, message string) error {
	res, err := c.request(ctx).
		SetBody(map[string]string{
			"userId":  userID,
			"title":   title,
			"message": message,
		}).
		Post("/notifications/test-push")
	if err = check(res, err); err != nil {
		return fmt.Errorf("failed to send test push: %w", err)
	}
	return nil
}
