package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// errorResponse is the error envelope documented for 4xx/5xx responses.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Request types ---

// calendarDate decodes "YYYY-MM-DD" (or a full RFC 3339 timestamp) into the
// UTC midnight of that day. An empty string decodes to the zero time.
type calendarDate struct {
	time.Time
}

func (d *calendarDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s format", domain.DateLayout)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q must use %s format", s, domain.DateLayout)
	}
	d.Time = domain.DateOf(t)
	return nil
}

func (d *calendarDate) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// nullable records whether a key was present in the JSON body at all, so an
// explicit null can be told apart from an omitted field.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type createTaskRequest struct {
	Title          string           `json:"title"           validate:"required,max=200"`
	Description    string           `json:"description"`
	Category       string           `json:"category"        validate:"required,category"`
	Priority       string           `json:"priority"        validate:"omitempty,oneof=low medium high"`
	Status         string           `json:"status"          validate:"omitempty,oneof=pending in_progress completed"`
	ClientName     string           `json:"client_name"     validate:"required"`
	ClientPhone    string           `json:"client_phone"`
	ClientEmail    string           `json:"client_email"    validate:"omitempty,email"`
	Equipment      string           `json:"equipment"`
	EquipmentModel string           `json:"equipment_model"`
	RequiredParts  string           `json:"required_parts"`
	Budget         *decimal.Decimal `json:"budget"          swaggertype:"number"`
	DueDate        *calendarDate    `json:"due_date"        swaggertype:"string" example:"2026-10-25"`
	CompletedAt    *time.Time       `json:"completed_at"`
}

// updateTaskRequest lists every patchable key. Keys outside this set are
// rejected when the body is decoded.
type updateTaskRequest struct {
	Title          nullable[string]          `json:"title"           swaggertype:"string"`
	Description    nullable[string]          `json:"description"     swaggertype:"string"`
	Category       nullable[string]          `json:"category"        swaggertype:"string"`
	Priority       nullable[string]          `json:"priority"        swaggertype:"string"`
	Status         nullable[string]          `json:"status"          swaggertype:"string"`
	ClientName     nullable[string]          `json:"client_name"     swaggertype:"string"`
	ClientPhone    nullable[string]          `json:"client_phone"    swaggertype:"string"`
	ClientEmail    nullable[string]          `json:"client_email"    swaggertype:"string"`
	Equipment      nullable[string]          `json:"equipment"       swaggertype:"string"`
	EquipmentModel nullable[string]          `json:"equipment_model" swaggertype:"string"`
	RequiredParts  nullable[string]          `json:"required_parts"  swaggertype:"string"`
	Budget         nullable[decimal.Decimal] `json:"budget"          swaggertype:"number"`
	DueDate        nullable[calendarDate]    `json:"due_date"        swaggertype:"string"`
	CompletedAt    nullable[time.Time]       `json:"completed_at"    swaggertype:"string"`
}

// --- Response types ---

type taskResponse struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	Priority       string       `json:"priority"`
	Status         string       `json:"status"`
	ClientName     string       `json:"client_name"`
	ClientPhone    string       `json:"client_phone"`
	ClientEmail    string       `json:"client_email"`
	Equipment      string       `json:"equipment"`
	EquipmentModel string       `json:"equipment_model"`
	RequiredParts  string       `json:"required_parts"`
	Budget         *json.Number `json:"budget"          swaggertype:"number"`
	TechnicianID   string       `json:"technician_id"`
	DueDate        *string      `json:"due_date"        example:"2026-10-25"`
	CreatedAt      time.Time    `json:"created_at"`
	CompletedAt    *time.Time   `json:"completed_at"`
	Overdue        bool         `json:"overdue"`
}

type taskEnvelope struct {
	Success bool         `json:"success"`
	Task    taskResponse `json:"task"`
}

type taskListEnvelope struct {
	Success bool           `json:"success"`
	Tasks   []taskResponse `json:"tasks"`
}

type statsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

type statsEnvelope struct {
	Success bool          `json:"success"`
	Stats   statsResponse `json:"stats"`
}

type dashboardEnvelope struct {
	Success     bool           `json:"success"`
	Stats       statsResponse  `json:"stats"`
	RecentTasks []taskResponse `json:"recentTasks"`
}

type categoryCountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int64  `json:"count"`
}

type overviewEnvelope struct {
	Success    bool                    `json:"success"`
	Stats      statsResponse           `json:"stats"`
	Categories []categoryCountResponse `json:"categories"`
}

type categoriesEnvelope struct {
	Success    bool              `json:"success"`
	Categories []domain.Category `json:"categories"`
}
