package lesson

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	requestutil "github.com/satomatashiki/manabiya/internal/platform/request"
	"github.com/satomatashiki/manabiya/internal/platform/respond"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts single-lesson operations under /lessons.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{id}", handler.getLesson)

	router.Group(func(instructorRoute chi.Router) {
		instructorRoute.Use(middleware.RequireRole(sec.RoleInstructor))

		instructorRoute.Patch("/{id}", handler.updateLesson)
		instructorRoute.Delete("/{id}", handler.deleteLesson)
	})
}

// RegisterCourseRoutes mounts the per-course outline under /courses.
func (handler *Handler) RegisterCourseRoutes(router chi.Router) {
	router.Get("/{id}/lessons", handler.listLessons)

	router.Group(func(instructorRoute chi.Router) {
		instructorRoute.Use(middleware.RequireRole(sec.RoleInstructor))

		instructorRoute.Post("/{id}/lessons", handler.createLesson)
		instructorRoute.Patch("/{id}/lessons/reorder", handler.reorderLessons)
	})
}

type createLessonRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	VideoURL    *string `json:"video_url,omitempty"`
	FreePreview bool    `json:"free_preview"`
}

type updateLessonRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
	Position    *int64  `json:"position,omitempty"`
	FreePreview *bool   `json:"free_preview,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

type reorderRequest struct {
	LessonIDs []string `json:"lesson_ids"`
}

func (handler *Handler) getLesson(writer http.ResponseWriter, request *http.Request) {
	lesson, err := handler.service.GetLesson(request.Context(),
		requestutil.Param(request, "id"), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lesson)
}

func (handler *Handler) listLessons(writer http.ResponseWriter, request *http.Request) {
	lessons, err := handler.service.ListLessons(request.Context(),
		requestutil.Param(request, "id"), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lessons)
}

func (handler *Handler) createLesson(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createLessonRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	lesson, err := handler.service.CreateLesson(request.Context(), requestutil.Param(request, "id"), identity, CreateInput{
		Title:       input.Title,
		Content:     input.Content,
		VideoURL:    input.VideoURL,
		FreePreview: input.FreePreview,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, lesson)
}

func (handler *Handler) updateLesson(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateLessonRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	lesson, err := handler.service.UpdateLesson(request.Context(), requestutil.Param(request, "id"), identity, UpdateInput{
		Title:       input.Title,
		Content:     input.Content,
		VideoURL:    input.VideoURL,
		Position:    input.Position,
		FreePreview: input.FreePreview,
		Published:   input.Published,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lesson)
}

func (handler *Handler) reorderLessons(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	lessons, err := handler.service.Reorder(request.Context(),
		requestutil.Param(request, "id"), identity, input.LessonIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lessons)
}

func (handler *Handler) deleteLesson(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteLesson(request.Context(), requestutil.Param(request, "id"), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
