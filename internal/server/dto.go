package server

import (
	"strings"
	"time"

	"dueline/internal/domain"
	"dueline/internal/engine"
	"dueline/internal/tracking"
)

// Request payloads

type CreateInstrumentRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	EntityIDs      []string `json:"entity_ids,omitempty"`
	ResponsibleIDs []string `json:"responsible_ids,omitempty"`
	DueDate        string   `json:"due_date" doc:"YYYY-MM-DD (end of day in the dashboard zone) or RFC3339"`
	Priority       string   `json:"priority,omitempty" enum:"low,medium,high"`
	TypeID         string   `json:"type_id"`
	Value          *float64 `json:"value,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Attachments    []string `json:"attachments,omitempty"`
}

// UpdateInstrumentRequest leaves absent fields unchanged. An empty array
// clears a collection.
type UpdateInstrumentRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	EntityIDs      []string `json:"entity_ids,omitempty"`
	ResponsibleIDs []string `json:"responsible_ids,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	Priority       *string  `json:"priority,omitempty" enum:"low,medium,high"`
	TypeID         *string  `json:"type_id,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Attachments    []string `json:"attachments,omitempty"`
	Status         *string  `json:"status,omitempty" enum:"pending,in_progress,signed,expired"`
	Note           string   `json:"note,omitempty" doc:"Description recorded on the appended movement"`
}

func (r UpdateInstrumentRequest) patch(loc *time.Location) (engine.InstrumentPatch, error) {
	p := engine.InstrumentPatch{
		Title:          r.Title,
		Description:    r.Description,
		EntityIDs:      r.EntityIDs,
		ResponsibleIDs: r.ResponsibleIDs,
		TypeID:         r.TypeID,
		Value:          r.Value,
		Tags:           r.Tags,
		Attachments:    r.Attachments,
		Note:           r.Note,
	}
	if r.DueDate != nil {
		due, err := engine.ParseDueDate(*r.DueDate, loc)
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	if r.Priority != nil {
		v := domain.Priority(*r.Priority)
		p.Priority = &v
	}
	if r.Status != nil {
		v := domain.InstrumentStatus(*r.Status)
		p.Status = &v
	}
	return p, nil
}

type SetSignatureRequest struct {
	Status string `json:"status,omitempty" enum:"pending,signed" doc:"Omit to toggle"`
}

type EntityRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
}

type ResponsibleRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

type TypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FilterQuery is the shared filter query string. List values are comma
// separated.
type FilterQuery struct {
	Status      string `query:"status" doc:"Comma-separated statuses"`
	Entity      string `query:"entity" doc:"Comma-separated entity ids"`
	Responsible string `query:"responsible" doc:"Comma-separated responsible ids"`
	Search      string `query:"search"`
	DueFrom     string `query:"due_from" doc:"YYYY-MM-DD or RFC3339, inclusive"`
	DueTo       string `query:"due_to" doc:"YYYY-MM-DD or RFC3339, inclusive"`
}

func (q FilterQuery) filter(loc *time.Location) (tracking.Filter, error) {
	f := tracking.Filter{
		Entity:      splitList(q.Entity),
		Responsible: splitList(q.Responsible),
		Search:      q.Search,
	}
	for _, s := range splitList(q.Status) {
		status := domain.InstrumentStatus(s)
		if !status.Valid() {
			return f, &engine.ValidationError{Field: "status", Reason: "unknown status " + s}
		}
		f.Status = append(f.Status, status)
	}
	var err error
	if q.DueFrom != "" {
		if f.DueFrom, err = engine.ParseDateBound("due_from", q.DueFrom, loc, false); err != nil {
			return f, err
		}
	}
	if q.DueTo != "" {
		if f.DueTo, err = engine.ParseDateBound("due_to", q.DueTo, loc, true); err != nil {
			return f, err
		}
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Responses

// InstrumentResponse adds the date classification to an instrument.
type InstrumentResponse struct {
	domain.Instrument
	Urgency   tracking.Urgency `json:"urgency" enum:"expired,expiring_soon,normal"`
	DaysUntil int              `json:"days_until"`
}

func instrumentResponse(in domain.Instrument, now time.Time, horizon int) InstrumentResponse {
	return InstrumentResponse{
		Instrument: in,
		Urgency:    tracking.Classify(in.DueDate, now, horizon),
		DaysUntil:  tracking.DaysUntil(in.DueDate, now),
	}
}

func mapInstruments(items []domain.Instrument, now time.Time, horizon int) []InstrumentResponse {
	out := make([]InstrumentResponse, len(items))
	for i, in := range items {
		out[i] = instrumentResponse(in, now, horizon)
	}
	return out
}

type InstrumentListResponse struct {
	Items []InstrumentResponse `json:"items"`
	Total int                  `json:"total"`
}

type MovementListResponse struct {
	Items []domain.Movement `json:"items"`
}

type NotificationListResponse struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
