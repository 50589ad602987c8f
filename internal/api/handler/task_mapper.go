package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

func toCreateInput(req *createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       domain.TaskPriority(req.Priority),
		Status:         domain.TaskStatus(req.Status),
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		Equipment:      req.Equipment,
		EquipmentModel: req.EquipmentModel,
		RequiredParts:  req.RequiredParts,
		Budget:         req.Budget,
		DueDate:        req.DueDate.ptr(),
		CompletedAt:    req.CompletedAt,
	}
}

// toPatch maps the decoded body onto the allow-list. Required text fields
// cannot be cleared; optional ones are cleared to "" by null.
func toPatch(req *updateTaskRequest, v *echoValidator) (ports.TaskPatch, error) {
	var (
		patch    ports.TaskPatch
		problems []string
	)

	required := func(name string, n nullable[string]) *string {
		if !n.Set {
			return nil
		}
		if n.Value == nil {
			problems = append(problems, name+" cannot be null")
			return nil
		}
		return n.Value
	}
	optional := func(n nullable[string]) *string {
		if !n.Set {
			return nil
		}
		if n.Value == nil {
			empty := ""
			return &empty
		}
		return n.Value
	}

	patch.Title = required("title", req.Title)
	patch.Category = required("category", req.Category)
	patch.ClientName = required("client_name", req.ClientName)
	patch.Description = optional(req.Description)
	patch.ClientPhone = optional(req.ClientPhone)
	patch.ClientEmail = optional(req.ClientEmail)
	patch.Equipment = optional(req.Equipment)
	patch.EquipmentModel = optional(req.EquipmentModel)
	patch.RequiredParts = optional(req.RequiredParts)

	if p := required("priority", req.Priority); p != nil {
		pr := domain.TaskPriority(*p)
		patch.Priority = &pr
	}
	if s := required("status", req.Status); s != nil {
		st := domain.TaskStatus(*s)
		patch.Status = &st
	}

	if patch.ClientEmail != nil {
		if err := v.Var("client_email", *patch.ClientEmail, "omitempty,email"); err != nil {
			return ports.TaskPatch{}, err
		}
	}

	patch.Budget = ports.Nullable[decimal.Decimal]{Set: req.Budget.Set, Value: req.Budget.Value}
	if req.DueDate.Set {
		patch.DueDate = ports.Nullable[time.Time]{Set: true}
		if req.DueDate.Value != nil {
			patch.DueDate.Value = req.DueDate.Value.ptr()
		}
	}
	if req.CompletedAt.Set {
		patch.CompletedAt = ports.Nullable[time.Time]{Set: true, Value: req.CompletedAt.Value}
	}

	if len(problems) > 0 {
		return ports.TaskPatch{}, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return patch, nil
}

func toTaskResponse(t *domain.Task, today time.Time) taskResponse {
	resp := taskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		ClientName:     t.ClientName,
		ClientPhone:    t.ClientPhone,
		ClientEmail:    t.ClientEmail,
		Equipment:      t.Equipment,
		EquipmentModel: t.EquipmentModel,
		RequiredParts:  t.RequiredParts,
		TechnicianID:   t.TechnicianID,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
		Overdue:        t.IsOverdue(today),
	}
	if t.Budget != nil {
		n := json.Number(t.Budget.String())
		resp.Budget = &n
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(domain.DateLayout)
		resp.DueDate = &s
	}
	return resp
}

func toTaskResponses(tasks []*domain.Task, today time.Time) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t, today))
	}
	return out
}

func toStatsResponse(s domain.TaskStats) statsResponse {
	return statsResponse{
		Total:      s.Total,
		Pending:    s.Pending,
		InProgress: s.InProgress,
		Completed:  s.Completed,
		Overdue:    s.Overdue,
	}
}
