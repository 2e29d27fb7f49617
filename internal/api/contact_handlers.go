package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/service"
	"github.com/listenupapp/fieldcodec/internal/store"
)

func (s *Server) registerContactRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createContact",
		Method:        http.MethodPost,
		Path:          "/api/v1/contacts",
		Summary:       "Create contact",
		Description:   "Creates a contact. A missing slug defaults to the highest existing contact ID.",
		Tags:          []string{"Contacts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "listContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts",
		Summary:     "List contacts",
		Description: "Returns contacts in ID order with cursor pagination",
		Tags:        []string{"Contacts"},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContact",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Get contact",
		Description: "Returns a contact by ID",
		Tags:        []string{"Contacts"},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContactBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/by-slug/{slug}",
		Summary:     "Get contact by slug",
		Description: "Returns the contact with the given slug",
		Tags:        []string{"Contacts"},
	}, s.handleGetContactBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContact",
		Method:      http.MethodPatch,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Update contact",
		Description: "Updates the fields present in the body. A null slug re-derives the default.",
		Tags:        []string{"Contacts"},
	}, s.handleUpdateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContact",
		Method:      http.MethodDelete,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Delete contact",
		Description: "Deletes a contact",
		Tags:        []string{"Contacts"},
	}, s.handleDeleteContact)
}

// === DTOs ===

// ContactRequest is the request body for creating and updating a contact.
// Each field takes raw text in stored form.
type ContactRequest struct {
	Slug         Text `json:"slug,omitempty" doc:"Slug; null or absent for the default"`
	Phone        Text `json:"phone,omitempty" doc:"Phone number in any common notation"`
	LuckyNumbers Text `json:"lucky_numbers,omitempty" doc:"Comma-separated integers"`
}

// CreateContactInput wraps the create contact request for Huma.
type CreateContactInput struct {
	Body ContactRequest
}

// UpdateContactInput wraps the update contact request for Huma.
type UpdateContactInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Contact ID"`
	Body ContactRequest
}

// ContactIDInput identifies a contact by ID.
type ContactIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Contact ID"`
}

// ContactSlugInput identifies a contact by slug.
type ContactSlugInput struct {
	Slug string `path:"slug" doc:"Contact slug"`
}

// ListContactsInput contains pagination parameters.
type ListContactsInput struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" doc:"Page size, default 100"`
	Cursor string `query:"cursor" doc:"Cursor from a previous page"`
}

// ContactOutput wraps a contact for Huma.
type ContactOutput struct {
	Body service.ContactView
}

// ListContactsResponse contains a page of contacts.
type ListContactsResponse struct {
	Contacts   []service.ContactView `json:"contacts" doc:"Contacts in ID order"`
	NextCursor string                `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool                  `json:"has_more" doc:"Whether more contacts follow"`
}

// ListContactsOutput wraps the list response for Huma.
type ListContactsOutput struct {
	Body ListContactsResponse
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleCreateContact(ctx context.Context, input *CreateContactInput) (*ContactOutput, error) {
	body := input.Body
	c, err := s.services.Contacts.Create(ctx, service.ContactInput{
		Slug:         codec.RawOrNull[codec.Slug](body.Slug.Ptr()),
		Phone:        codec.RawOrNull[codec.Phone](body.Phone.Ptr()),
		LuckyNumbers: codec.RawOrNull[codec.IntList](body.LuckyNumbers.Ptr()),
	})
	if err != nil {
		return nil, fail(s.logger, "createContact", err)
	}
	return s.contactOutput(c), nil
}

func (s *Server) handleListContacts(ctx context.Context, input *ListContactsInput) (*ListContactsOutput, error) {
	params := store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor}
	params.Validate()

	page, err := s.services.Contacts.List(ctx, params)
	if err != nil {
		return nil, fail(s.logger, "listContacts", err)
	}

	views := make([]service.ContactView, len(page.Items))
	for i, c := range page.Items {
		views[i] = s.services.Contacts.View(c)
	}

	return &ListContactsOutput{Body: ListContactsResponse{
		Contacts:   views,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *ContactIDInput) (*ContactOutput, error) {
	c, err := s.services.Contacts.Get(ctx, input.ID)
	if err != nil {
		return nil, fail(s.logger, "getContact", err)
	}
	return s.contactOutput(c), nil
}

func (s *Server) handleGetContactBySlug(ctx context.Context, input *ContactSlugInput) (*ContactOutput, error) {
	c, err := s.services.Contacts.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, fail(s.logger, "getContactBySlug", err)
	}
	return s.contactOutput(c), nil
}

func (s *Server) handleUpdateContact(ctx context.Context, input *UpdateContactInput) (*ContactOutput, error) {
	body := input.Body
	c, err := s.services.Contacts.Update(ctx, input.ID, service.ContactPatch{
		Slug:         patchInput[codec.Slug](body.Slug),
		Phone:        patchInput[codec.Phone](body.Phone),
		LuckyNumbers: patchInput[codec.IntList](body.LuckyNumbers),
	})
	if err != nil {
		return nil, fail(s.logger, "updateContact", err)
	}
	return s.contactOutput(c), nil
}

func (s *Server) handleDeleteContact(ctx context.Context, input *ContactIDInput) (*MessageOutput, error) {
	if err := s.services.Contacts.Delete(ctx, input.ID); err != nil {
		return nil, fail(s.logger, "deleteContact", err)
	}
	return &MessageOutput{Body: MessageResponse{Message: "Contact deleted"}}, nil
}

func (s *Server) contactOutput(c *domain.Contact) *ContactOutput {
	return &ContactOutput{Body: s.services.Contacts.View(c)}
}

// patchInput returns nil for an absent field.
func patchInput[T any](t Text) *codec.Input[T] {
	if !t.Set {
		return nil
	}
	in := codec.RawOrNull[T](t.Ptr())
	return &in
}
