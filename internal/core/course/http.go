package course

import (
	"net/http"
	"strings"

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

// RegisterRoutes mounts course management under /courses.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.browseCourses)

	router.Group(func(instructorRoute chi.Router) {
		instructorRoute.Use(middleware.RequireRole(sec.RoleInstructor))

		instructorRoute.Post("/", handler.createCourse)
		instructorRoute.Patch("/{id}", handler.updateCourse)
		instructorRoute.Delete("/{id}", handler.deleteCourse)
	})
}

// RegisterSpaceRoutes mounts the public catalog views under /spaces.
func (handler *Handler) RegisterSpaceRoutes(router chi.Router) {
	router.Get("/{slug}/courses", handler.listCourses)
	router.Get("/{slug}/courses/{courseSlug}", handler.getCourse)
}

type createCourseRequest struct {
	SpaceID     string  `json:"space_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CoverURL    *string `json:"cover_url,omitempty"`
	Pricing     Pricing `json:"pricing"`
	PriceCents  int64   `json:"price_cents"`
	Currency    string  `json:"currency,omitempty"`
	Position    int64   `json:"position"`
}

type updateCourseRequest struct {
	Title             *string  `json:"title,omitempty"`
	Description       *string  `json:"description,omitempty"`
	CoverURL          *string  `json:"cover_url,omitempty"`
	CoursePageContent *any     `json:"course_page_content,omitempty"`
	Pricing           *Pricing `json:"pricing,omitempty"`
	PriceCents        *int64   `json:"price_cents,omitempty"`
	Currency          *string  `json:"currency,omitempty"`
	PaymentProductRef *string  `json:"payment_product_ref,omitempty"`
	PaymentPriceRef   *string  `json:"payment_price_ref,omitempty"`
	Published         *bool    `json:"published,omitempty"`
	Position          *int64   `json:"position,omitempty"`
}

// browseCourses serves GET /courses?space_ids=a,b — the published catalog
// across several spaces.
func (handler *Handler) browseCourses(writer http.ResponseWriter, request *http.Request) {
	var spaceIDs []string
	for _, part := range strings.Split(request.URL.Query().Get("space_ids"), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			spaceIDs = append(spaceIDs, trimmed)
		}
	}

	courses, err := handler.service.BrowseCourses(request.Context(), spaceIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, courses)
}

func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	courses, total, err := handler.service.ListCourses(request.Context(),
		requestutil.Param(request, "slug"), requestutil.Identity(request), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, courses, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.service.GetCourse(request.Context(),
		requestutil.Param(request, "slug"), requestutil.Param(request, "courseSlug"), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createCourseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	course, err := handler.service.CreateCourse(request.Context(), input.SpaceID, identity, CreateInput{
		Title:       input.Title,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Pricing:     input.Pricing,
		PriceCents:  input.PriceCents,
		Currency:    input.Currency,
		Position:    input.Position,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, course)
}

func (handler *Handler) updateCourse(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateCourseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	course, err := handler.service.UpdateCourse(request.Context(), requestutil.Param(request, "id"), identity, UpdateInput{
		Title:             input.Title,
		Description:       input.Description,
		CoverURL:          input.CoverURL,
		CoursePageContent: input.CoursePageContent,
		Pricing:           input.Pricing,
		PriceCents:        input.PriceCents,
		Currency:          input.Currency,
		PaymentProductRef: input.PaymentProductRef,
		PaymentPriceRef:   input.PaymentPriceRef,
		Published:         input.Published,
		Position:          input.Position,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *Handler) deleteCourse(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCourse(request.Context(), requestutil.Param(request, "id"), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
