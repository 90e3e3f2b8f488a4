package models

import (
	"strconv"
	"time"
)

// Activity is one persisted dashboard notification.
type Activity struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Entity    string    `json:"entity"`
	TargetID  string    `json:"recordId,omitempty"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a Activity) RecordID() string    { return strconv.FormatInt(a.ID, 10) }
func (a Activity) RecordLabel() string { return a.Message }
