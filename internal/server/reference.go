package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"dueline/internal/domain"
)

type idPath struct {
	ID string `path:"id"`
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (h handlers) registerReference(api huma.API) {
	h.registerEntities(api)
	h.registerResponsibles(api)
	h.registerTypes(api)
}

func (h handlers) registerEntities(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-entities",
		Method:      http.MethodGet,
		Path:        "/entities",
		Summary:     "List entities",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Entity `json:"body"`
	}, error) {
		items, err := h.engine.ListEntities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Entity `json:"body"`
		}{Body: orEmpty(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-entity",
		Method:        http.MethodPost,
		Path:          "/entities",
		Summary:       "Create entity",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body EntityRequest `json:"body"`
	}) (*struct {
		Body domain.Entity `json:"body"`
	}, error) {
		ent, err := h.engine.CreateEntity(ctx, domain.Entity{Name: input.Body.Name, TaxID: input.Body.TaxID, Address: input.Body.Address})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Entity `json:"body"`
		}{Body: ent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-entity",
		Method:      http.MethodPatch,
		Path:        "/entities/{id}",
		Summary:     "Update entity",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string        `path:"id"`
		Body EntityRequest `json:"body"`
	}) (*struct {
		Body domain.Entity `json:"body"`
	}, error) {
		ent, err := h.engine.UpdateEntity(ctx, domain.Entity{ID: input.ID, Name: input.Body.Name, TaxID: input.Body.TaxID, Address: input.Body.Address})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Entity `json:"body"`
		}{Body: ent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-entity",
		Method:      http.MethodDelete,
		Path:        "/entities/{id}",
		Summary:     "Delete entity",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct{}, error) {
		if err := h.engine.DeleteEntity(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func (h handlers) registerResponsibles(api huma.API) {
	roster := func(id string, r ResponsibleRequest) domain.RosterResponsible {
		return domain.RosterResponsible{ID: id, Name: r.Name, Email: r.Email, Phone: r.Phone, Department: r.Department}
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-responsibles",
		Method:      http.MethodGet,
		Path:        "/responsibles",
		Summary:     "List responsibles",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.RosterResponsible `json:"body"`
	}, error) {
		items, err := h.engine.ListResponsibles(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.RosterResponsible `json:"body"`
		}{Body: orEmpty(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-responsible",
		Method:        http.MethodPost,
		Path:          "/responsibles",
		Summary:       "Create responsible",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ResponsibleRequest `json:"body"`
	}) (*struct {
		Body domain.RosterResponsible `json:"body"`
	}, error) {
		p, err := h.engine.CreateResponsible(ctx, roster("", input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.RosterResponsible `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-responsible",
		Method:      http.MethodPatch,
		Path:        "/responsibles/{id}",
		Summary:     "Update responsible",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string             `path:"id"`
		Body ResponsibleRequest `json:"body"`
	}) (*struct {
		Body domain.RosterResponsible `json:"body"`
	}, error) {
		p, err := h.engine.UpdateResponsible(ctx, roster(input.ID, input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.RosterResponsible `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-responsible",
		Method:      http.MethodDelete,
		Path:        "/responsibles/{id}",
		Summary:     "Delete responsible",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct{}, error) {
		if err := h.engine.DeleteResponsible(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func (h handlers) registerTypes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-types",
		Method:      http.MethodGet,
		Path:        "/types",
		Summary:     "List instrument types",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.InstrumentType `json:"body"`
	}, error) {
		items, err := h.engine.ListTypes(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.InstrumentType `json:"body"`
		}{Body: orEmpty(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-type",
		Method:        http.MethodPost,
		Path:          "/types",
		Summary:       "Create instrument type",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body TypeRequest `json:"body"`
	}) (*struct {
		Body domain.InstrumentType `json:"body"`
	}, error) {
		t, err := h.engine.CreateType(ctx, domain.InstrumentType{Name: input.Body.Name, Description: input.Body.Description})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.InstrumentType `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-type",
		Method:      http.MethodPatch,
		Path:        "/types/{id}",
		Summary:     "Update instrument type",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body TypeRequest `json:"body"`
	}) (*struct {
		Body domain.InstrumentType `json:"body"`
	}, error) {
		t, err := h.engine.UpdateType(ctx, domain.InstrumentType{ID: input.ID, Name: input.Body.Name, Description: input.Body.Description})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.InstrumentType `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-type",
		Method:      http.MethodDelete,
		Path:        "/types/{id}",
		Summary:     "Delete instrument type",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct{}, error) {
		if err := h.engine.DeleteType(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
