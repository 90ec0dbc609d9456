package enrollment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	requestutil "github.com/satomatashiki/manabiya/internal/platform/request"
	"github.com/satomatashiki/manabiya/internal/platform/respond"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the student's own membership list under /enrollments.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Get("/", handler.listOwn)
	})
}

// RegisterSpaceRoutes mounts enrollment operations under /spaces.
func (handler *Handler) RegisterSpaceRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Post("/{id}/enroll", handler.enroll)
		studentRoute.Delete("/{id}/enroll", handler.unenroll)
	})

	router.Group(func(instructorRoute chi.Router) {
		instructorRoute.Use(middleware.RequireRole(sec.RoleInstructor))

		instructorRoute.Get("/{id}/students", handler.listStudents)
	})
}

func (handler *Handler) enroll(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enrollment, err := handler.service.Enroll(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, enrollment)
}

func (handler *Handler) unenroll(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unenroll(request.Context(), requestutil.Param(request, "id"), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listStudents(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	students, total, err := handler.service.ListStudents(request.Context(),
		requestutil.Param(request, "id"), identity, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, students, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	enrollments, total, err := handler.service.ListOwn(request.Context(), identity, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, enrollments, pagination.NewMeta(params.Page, params.Limit, total))
}
