package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"dueline/internal/export"
)

type fileResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

func (h handlers) report(ctx context.Context) (export.Report, error) {
	names, err := h.engine.TypeNames(ctx)
	if err != nil {
		return export.Report{}, err
	}
	return export.Report{
		Title:       h.exportTitle,
		GeneratedAt: h.engine.CurrentTime(),
		Formatter:   h.formatter,
		TypeNames:   names,
	}, nil
}

func (h handlers) registerExports(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "export-instruments",
		Method:      http.MethodGet,
		Path:        "/exports/{format}",
		Summary:     "Export the filtered instrument list",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Format string `path:"format" enum:"pdf,xlsx,csv"`
		FilterQuery
	}) (*fileResponse, error) {
		f, err := export.ParseFormat(input.Format)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		filter, err := input.filter(h.engine.Location())
		if err != nil {
			return nil, handleError(err)
		}
		items, err := h.engine.Instruments(ctx, filter)
		if err != nil {
			return nil, handleError(err)
		}
		r, err := h.report(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, f, r, items); err != nil {
			return nil, handleError(err)
		}
		return &fileResponse{
			ContentType:        f.ContentType(),
			ContentDisposition: attachment(export.ListFilename(f)),
			Body:               buf.Bytes(),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-instrument-pdf",
		Method:      http.MethodGet,
		Path:        "/instruments/{instrument_id}/export.pdf",
		Summary:     "Export one instrument as PDF",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *instrumentPath) (*fileResponse, error) {
		in, err := h.engine.GetInstrument(ctx, input.InstrumentID)
		if err != nil {
			return nil, handleError(err)
		}
		r, err := h.report(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		var buf bytes.Buffer
		if err := export.DetailPDF(&buf, r, in); err != nil {
			return nil, handleError(err)
		}
		return &fileResponse{
			ContentType:        export.FormatPDF.ContentType(),
			ContentDisposition: attachment(export.DetailFilename(in.Title)),
			Body:               buf.Bytes(),
		}, nil
	})
}
