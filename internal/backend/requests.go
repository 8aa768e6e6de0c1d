package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/katatrina/blood-notify/internal/bloodrequest"
)

func (c *Client) ListBloodRequests(ctx context.Context) ([]bloodrequest.BloodRequest, error) {
	var body requestList
	res, err := c.request(ctx).
		SetResult(&body).
		Get("/blood-requests/get-all")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	return body, nil
}

func (c *Client) ListBloodRequestsByUser(ctx context.Context, userID string) ([]bloodrequest.BloodRequest, error) {
	var body requestList
	res, err := c.request(ctx).
		SetPathParam("userId", userID).
		SetResult(&body).
		Get("/blood-requests/get-by-user/{userId}")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to list blood requests by user: %w", err)
	}
	return body, nil
}

func (c *Client) UpdateBloodRequestStatus(ctx context.Context, id string, status bloodrequest.Status) (*bloodrequest.Patch, error) {
	var body updatedRequest
	res, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(map[string]bloodrequest.Status{"status": status}).
		SetResult(&body).
		Patch("/blood-requests/update-status/{id}")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to update blood request status: %w", err)
	}
	return body.patch, nil
}

func (c *Client) UpdateBloodRequestConfirmation(ctx context.Context, id string, confirmation bloodrequest.ConfirmationStatus) (*bloodrequest.Patch, error) {
	var body updatedRequest
	res, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(map[string]bloodrequest.ConfirmationStatus{"confirmationStatus": confirmation}).
		SetResult(&body).
		Patch("/blood-requests/update-confirmation/{id}")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to update blood request confirmation: %w", err)
	}
	return body.patch, nil
}

// requestList accepts {bloodRequests: [...]} or a bare array.
type requestList []bloodrequest.BloodRequest

func (l *requestList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]bloodrequest.BloodRequest)(l))
	}

	var body struct {
		BloodRequests []bloodrequest.BloodRequest `json:"bloodRequests"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*l = body.BloodRequests
	return nil
}

// updatedRequest reads the echoed request from updatedRequest, request or
// the body itself. A body without any of them leaves patch nil.
type updatedRequest struct {
	patch *bloodrequest.Patch
}

func (u *updatedRequest) UnmarshalJSON(data []byte) error {
	var body struct {
		UpdatedRequest *bloodrequest.Patch `json:"updatedRequest"`
		Request        *bloodrequest.Patch `json:"request"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	switch {
	case body.UpdatedRequest != nil:
		u.patch = body.UpdatedRequest
		return nil
	case body.Request != nil:
		u.patch = body.Request
		return nil
	}

	var patch bloodrequest.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return err
	}
	if patch.ID == "" && patch.Status == nil && patch.ConfirmationStatus == nil {
		return nil
	}
	u.patch = &patch
	return nil
}
