package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/service"
)

func (s *Server) registerFieldRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFields",
		Method:      http.MethodGet,
		Path:        "/api/v1/fields",
		Summary:     "List fields",
		Description: "Returns every configured field and its codec settings",
		Tags:        []string{"Fields"},
	}, s.handleListFields)

	huma.Register(s.api, huma.Operation{
		OperationID: "parseField",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields/{name}/parse",
		Summary:     "Parse stored text",
		Description: "Reads a stored column value the way a row load would",
		Tags:        []string{"Fields"},
	}, s.handleParseField)

	huma.Register(s.api, huma.Operation{
		OperationID: "normalizeField",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields/{name}/normalize",
		Summary:     "Normalize input",
		Description: "Validates raw input the way an assignment would",
		Tags:        []string{"Fields"},
	}, s.handleNormalizeField)

	huma.Register(s.api, huma.Operation{
		OperationID: "serializeField",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields/{name}/serialize",
		Summary:     "Serialize input",
		Description: "Normalizes raw input and returns the text that would be stored. Slug defaults are a preview.",
		Tags:        []string{"Fields"},
	}, s.handleSerializeField)
}

// === DTOs ===

// ListFieldsResponse contains the configured fields.
type ListFieldsResponse struct {
	Fields []service.FieldInfo `json:"fields" doc:"Fields in name order"`
}

// ListFieldsOutput wraps the list fields response for Huma.
type ListFieldsOutput struct {
	Body ListFieldsResponse
}

// ParseFieldRequest is the request body for parsing stored text.
type ParseFieldRequest struct {
	Stored Text `json:"stored,omitempty" doc:"Stored column text; null or absent for NULL"`
}

// ParseFieldInput wraps the parse request for Huma.
type ParseFieldInput struct {
	Name string `path:"name" doc:"Field name"`
	Body ParseFieldRequest
}

// RawFieldRequest is the request body for normalize and serialize.
type RawFieldRequest struct {
	Raw Text `json:"raw,omitempty" doc:"Raw input text; null or absent for no value"`
}

// RawFieldInput wraps a raw input request for Huma.
type RawFieldInput struct {
	Name string `path:"name" doc:"Field name"`
	Body RawFieldRequest
}

// ValueResponse is a structured value.
type ValueResponse struct {
	Field   string `json:"field" doc:"Field name"`
	Kind    string `json:"kind" doc:"Codec kind"`
	Value   any    `json:"value" doc:"Integer list, phone or slug text, or null"`
	Display string `json:"display" doc:"Human-readable rendering"`
	Valid   bool   `json:"valid" doc:"False only for a stored phone number kept unparsed"`
}

// ValueOutput wraps the value response for Huma.
type ValueOutput struct {
	Body ValueResponse
}

// StoredResponse is the text a value serializes to.
type StoredResponse struct {
	Field  string  `json:"field" doc:"Field name"`
	Stored *string `json:"stored" doc:"Stored column text, or null for NULL"`
}

// StoredOutput wraps the stored response for Huma.
type StoredOutput struct {
	Body StoredResponse
}

// === Handlers ===

func (s *Server) handleListFields(_ context.Context, _ *struct{}) (*ListFieldsOutput, error) {
	return &ListFieldsOutput{Body: ListFieldsResponse{Fields: s.services.Fields.Fields()}}, nil
}

func (s *Server) handleParseField(_ context.Context, input *ParseFieldInput) (*ValueOutput, error) {
	v, err := s.services.Fields.Parse(input.Name, input.Body.Stored.NullString())
	if err != nil {
		return nil, fail(s.logger, "parseField", err)
	}
	return &ValueOutput{Body: valueResponse(input.Name, v)}, nil
}

func (s *Server) handleNormalizeField(_ context.Context, input *RawFieldInput) (*ValueOutput, error) {
	v, err := s.services.Fields.Normalize(input.Name, input.Body.Raw.NullString())
	if err != nil {
		return nil, fail(s.logger, "normalizeField", err)
	}
	return &ValueOutput{Body: valueResponse(input.Name, v)}, nil
}

func (s *Server) handleSerializeField(ctx context.Context, input *RawFieldInput) (*StoredOutput, error) {
	stored, err := s.services.Fields.Serialize(ctx, input.Name, input.Body.Raw.NullString())
	if err != nil {
		return nil, fail(s.logger, "serializeField", err)
	}

	resp := StoredResponse{Field: input.Name}
	if stored.Valid {
		resp.Stored = &stored.String
	}
	return &StoredOutput{Body: resp}, nil
}

func valueResponse(name string, v codec.Value) ValueResponse {
	return ValueResponse{
		Field:   name,
		Kind:    string(v.Kind),
		Value:   v.Data,
		Display: v.Display,
		Valid:   v.Valid,
	}
}
