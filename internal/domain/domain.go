package domain

import (
	"slices"
	"time"
)

type InstrumentStatus string

const (
	StatusPending    InstrumentStatus = "pending"
	StatusInProgress InstrumentStatus = "in_progress"
	StatusSigned     InstrumentStatus = "signed"
	StatusExpired    InstrumentStatus = "expired"
)

// Statuses lists every lifecycle status in display order.
var Statuses = []InstrumentStatus{StatusPending, StatusInProgress, StatusSigned, StatusExpired}

func (s InstrumentStatus) Valid() bool {
	return slices.Contains(Statuses, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type SignatureStatus string

const (
	SignaturePending SignatureStatus = "pending"
	SignatureSigned  SignatureStatus = "signed"
)

func (s SignatureStatus) Valid() bool {
	return s == SignaturePending || s == SignatureSigned
}

// Toggle returns the opposite signature state.
func (s SignatureStatus) Toggle() SignatureStatus {
	if s == SignatureSigned {
		return SignaturePending
	}
	return SignatureSigned
}

// Entity is a counterparty organization.
type Entity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
}

type InstrumentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RosterResponsible is a person in the master roster.
type RosterResponsible struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

// Assign copies the roster entry into a per-instrument responsible with a
// pending signature.
func (r RosterResponsible) Assign() InstrumentResponsible {
	return InstrumentResponsible{RosterResponsible: r, SignatureStatus: SignaturePending}
}

// InstrumentResponsible is a responsible as attached to one instrument. It
// owns its signature state; the embedded roster fields are a copy.
type InstrumentResponsible struct {
	RosterResponsible
	SignatureStatus SignatureStatus `json:"signature_status"`
	SignatureDate   *time.Time      `json:"signature_date,omitempty"`
}

type Movement struct {
	ID           int64            `json:"id"`
	InstrumentID string           `json:"instrument_id"`
	Status       InstrumentStatus `json:"status"`
	Description  string           `json:"description"`
	Date         time.Time        `json:"date"`
	UserID       string           `json:"user_id"`
	UserName     string           `json:"user_name"`
}

type Instrument struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description,omitempty"`
	Entities     []Entity                `json:"entities"`
	Responsibles []InstrumentResponsible `json:"responsibles"`
	Status       InstrumentStatus        `json:"status"`
	SentDate     time.Time               `json:"sent_date"`
	SignDate     *time.Time              `json:"sign_date,omitempty"`
	DueDate      time.Time               `json:"due_date"`
	Priority     Priority                `json:"priority"`
	TypeID       string                  `json:"type_id"`
	Value        *float64                `json:"value,omitempty"`
	Movements    []Movement              `json:"movements"`
	Tags         []string                `json:"tags,omitempty"`
	Attachments  []string                `json:"attachments,omitempty"`
}

// Clone returns a deep copy so callers can hand out snapshots.
func (in Instrument) Clone() Instrument {
	out := in
	out.Entities = slices.Clone(in.Entities)
	out.Responsibles = make([]InstrumentResponsible, len(in.Responsibles))
	for i, r := range in.Responsibles {
		if r.SignatureDate != nil {
			d := *r.SignatureDate
			r.SignatureDate = &d
		}
		out.Responsibles[i] = r
	}
	if in.SignDate != nil {
		d := *in.SignDate
		out.SignDate = &d
	}
	if in.Value != nil {
		v := *in.Value
		out.Value = &v
	}
	out.Movements = slices.Clone(in.Movements)
	out.Tags = slices.Clone(in.Tags)
	out.Attachments = slices.Clone(in.Attachments)
	return out
}

// Responsible returns the index of the responsible with the given id, or -1.
func (in Instrument) Responsible(id string) int {
	return slices.IndexFunc(in.Responsibles, func(r InstrumentResponsible) bool { return r.ID == id })
}

// FullySigned reports whether every attached responsible has signed.
func (in Instrument) FullySigned() bool {
	if len(in.Responsibles) == 0 {
		return false
	}
	for _, r := range in.Responsibles {
		if r.SignatureStatus != SignatureSigned {
			return false
		}
	}
	return true
}

type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
	NotificationSuccess NotificationKind = "success"
)

type Notification struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Kind         NotificationKind `json:"kind" enum:"info,warning,error,success"`
	Date         time.Time        `json:"date"`
	Read         bool             `json:"read"`
	InstrumentID string           `json:"instrument_id,omitempty"`
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAnalyst Role = "analyst"
	RoleAuditor Role = "auditor"
)

// UserProfile is the acting user stamped on movements.
type UserProfile struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email"`
	Role  Role   `json:"role" yaml:"role"`
}
