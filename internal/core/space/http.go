package space

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	requestutil "github.com/satomatashiki/manabiya/internal/platform/request"
	"github.com/satomatashiki/manabiya/internal/platform/respond"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
	"github.com/satomatashiki/manabiya/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public (published spaces only; owners see their own drafts)
	router.Get("/{slug}", handler.getSpace)

	// Instructor only
	router.Group(func(instructorRoute chi.Router) {
		instructorRoute.Use(middleware.RequireRole(sec.RoleInstructor))

		instructorRoute.Get("/", handler.listOwnSpaces)
		instructorRoute.Post("/", handler.createSpace)
		instructorRoute.Patch("/{id}", handler.updateSpace)
		instructorRoute.Delete("/{id}", handler.deleteSpace)
	})
}

type createSpaceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	LogoURL         *string `json:"logo_url,omitempty"`
	StudentCapacity *int64  `json:"student_capacity,omitempty"`
}

type updateSpaceRequest struct {
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	LogoURL            *string `json:"logo_url,omitempty"`
	LandingPageContent *any    `json:"landing_page_content,omitempty"`
	Published          *bool   `json:"published,omitempty"`
	StudentCapacity    *int64  `json:"student_capacity,omitempty"`
}

func (handler *Handler) getSpace(writer http.ResponseWriter, request *http.Request) {
	slug := requestutil.Param(request, "slug")

	space, err := handler.service.GetSpace(request.Context(), slug, requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, space)
}

func (handler *Handler) listOwnSpaces(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	spaces, total, err := handler.service.ListOwnSpaces(request.Context(), identity, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, spaces, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) createSpace(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createSpaceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	space, err := handler.service.CreateSpace(request.Context(), identity, CreateInput{
		Name:            input.Name,
		Description:     input.Description,
		LogoURL:         input.LogoURL,
		StudentCapacity: input.StudentCapacity,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, space)
}

func (handler *Handler) updateSpace(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateSpaceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	space, err := handler.service.UpdateSpace(request.Context(), requestutil.Param(request, "id"), identity, UpdateInput{
		Name:               input.Name,
		Description:        input.Description,
		LogoURL:            input.LogoURL,
		LandingPageContent: input.LandingPageContent,
		Published:          input.Published,
		StudentCapacity:    input.StudentCapacity,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, space)
}

func (handler *Handler) deleteSpace(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSpace(request.Context(), requestutil.Param(request, "id"), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
