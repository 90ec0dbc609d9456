package progress

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	requestutil "github.com/satomatashiki/manabiya/internal/platform/request"
	"github.com/satomatashiki/manabiya/internal/platform/respond"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterLessonRoutes mounts completion marks under /lessons.
func (handler *Handler) RegisterLessonRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Post("/{id}/complete", handler.complete)
		studentRoute.Delete("/{id}/complete", handler.uncomplete)
	})
}

// RegisterCourseRoutes mounts the progress summary under /courses.
func (handler *Handler) RegisterCourseRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Get("/{id}/progress", handler.courseProgress)
	})
}

func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	completion, err := handler.service.CompleteLesson(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, completion)
}

func (handler *Handler) uncomplete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UncompleteLesson(request.Context(), requestutil.Param(request, "id"), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) courseProgress(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.GetCourseProgress(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}
