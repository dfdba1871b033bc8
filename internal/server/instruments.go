package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"dueline/internal/domain"
	"dueline/internal/engine"
	"dueline/internal/format"
	"dueline/internal/tracking"
)

// handlers binds the API operations to one engine.
type handlers struct {
	engine      engine.Engine
	exportTitle string
	formatter   format.Formatter
}

type instrumentPath struct {
	InstrumentID string `path:"instrument_id"`
}

func (h handlers) registerInstruments(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-instruments",
		Method:      http.MethodGet,
		Path:        "/instruments",
		Summary:     "List instruments",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *FilterQuery) (*struct {
		Body InstrumentListResponse `json:"body"`
	}, error) {
		f, err := input.filter(h.engine.Location())
		if err != nil {
			return nil, handleError(err)
		}
		items, err := h.engine.Instruments(ctx, f)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InstrumentListResponse `json:"body"`
		}{Body: InstrumentListResponse{
			Items: mapInstruments(items, h.engine.CurrentTime(), h.engine.Horizon()),
			Total: len(items),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-instrument",
		Method:        http.MethodPost,
		Path:          "/instruments",
		Summary:       "Create instrument",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreateInstrumentRequest `json:"body"`
	}) (*struct {
		Body InstrumentResponse `json:"body"`
	}, error) {
		due, err := engine.ParseDueDate(input.Body.DueDate, h.engine.Location())
		if err != nil {
			return nil, handleError(err)
		}
		in, err := h.engine.CreateInstrument(ctx, engine.InstrumentForm{
			Title:          input.Body.Title,
			Description:    input.Body.Description,
			EntityIDs:      input.Body.EntityIDs,
			ResponsibleIDs: input.Body.ResponsibleIDs,
			DueDate:        due,
			Priority:       domain.Priority(input.Body.Priority),
			TypeID:         input.Body.TypeID,
			Value:          input.Body.Value,
			Tags:           input.Body.Tags,
			Attachments:    input.Body.Attachments,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InstrumentResponse `json:"body"`
		}{Body: h.instrument(in)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-instrument",
		Method:      http.MethodGet,
		Path:        "/instruments/{instrument_id}",
		Summary:     "Get instrument",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *instrumentPath) (*struct {
		Body InstrumentResponse `json:"body"`
	}, error) {
		in, err := h.engine.GetInstrument(ctx, input.InstrumentID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InstrumentResponse `json:"body"`
		}{Body: h.instrument(in)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-instrument",
		Method:      http.MethodPatch,
		Path:        "/instruments/{instrument_id}",
		Summary:     "Update instrument",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		InstrumentID string                  `path:"instrument_id"`
		Body         UpdateInstrumentRequest `json:"body"`
	}) (*struct {
		Body InstrumentResponse `json:"body"`
	}, error) {
		patch, err := input.Body.patch(h.engine.Location())
		if err != nil {
			return nil, handleError(err)
		}
		in, err := h.engine.UpdateInstrument(ctx, input.InstrumentID, patch)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InstrumentResponse `json:"body"`
		}{Body: h.instrument(in)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-instrument",
		Method:      http.MethodDelete,
		Path:        "/instruments/{instrument_id}",
		Summary:     "Delete instrument",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *instrumentPath) (*struct{}, error) {
		if err := h.engine.DeleteInstrument(ctx, input.InstrumentID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-signature",
		Method:      http.MethodPut,
		Path:        "/instruments/{instrument_id}/responsibles/{responsible_id}/signature",
		Summary:     "Set or toggle a responsible's signature",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		InstrumentID  string              `path:"instrument_id"`
		ResponsibleID string              `path:"responsible_id"`
		Body          SetSignatureRequest `json:"body"`
	}) (*struct {
		Body InstrumentResponse `json:"body"`
	}, error) {
		in, err := h.engine.SetSignature(ctx, input.InstrumentID, input.ResponsibleID, domain.SignatureStatus(input.Body.Status))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InstrumentResponse `json:"body"`
		}{Body: h.instrument(in)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-movements",
		Method:      http.MethodGet,
		Path:        "/instruments/{instrument_id}/movements",
		Summary:     "Instrument history",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *instrumentPath) (*struct {
		Body MovementListResponse `json:"body"`
	}, error) {
		items, err := h.engine.History(ctx, input.InstrumentID)
		if err != nil {
			return nil, handleError(err)
		}
		if items == nil {
			items = []domain.Movement{}
		}
		return &struct {
			Body MovementListResponse `json:"body"`
		}{Body: MovementListResponse{Items: items}}, nil
	})
}

func (h handlers) instrument(in domain.Instrument) InstrumentResponse {
	return instrumentResponse(in, h.engine.CurrentTime(), h.engine.Horizon())
}

// DashboardResponse is the full dashboard read.
type DashboardResponse struct {
	GeneratedAt time.Time            `json:"generated_at"`
	HorizonDays int                  `json:"horizon_days"`
	Instruments []InstrumentResponse `json:"instruments"`
	Metrics     tracking.Metrics     `json:"metrics"`
	Priorities  tracking.Selection   `json:"priorities"`
}

func (h handlers) registerDashboard(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Filtered instruments with metrics and priorities",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *FilterQuery) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		f, err := input.filter(h.engine.Location())
		if err != nil {
			return nil, handleError(err)
		}
		d, err := h.engine.Dashboard(ctx, f)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{
			GeneratedAt: d.GeneratedAt,
			HorizonDays: d.HorizonDays,
			Instruments: mapInstruments(d.Instruments, d.GeneratedAt, d.HorizonDays),
			Metrics:     d.Metrics,
			Priorities:  d.Priorities,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "priorities",
		Method:      http.MethodGet,
		Path:        "/priorities",
		Summary:     "Priority selection over all instruments",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body tracking.Selection `json:"body"`
	}, error) {
		sel, err := h.engine.Priorities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body tracking.Selection `json:"body"`
		}{Body: sel}, nil
	})
}
