package purchase

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

// RegisterRoutes mounts purchase history and completion under /purchases.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Get("/", handler.listOwn)
		studentRoute.Post("/{id}/complete", handler.complete)
	})
}

// RegisterCourseRoutes mounts purchase entry points under /courses.
func (handler *Handler) RegisterCourseRoutes(router chi.Router) {
	router.Group(func(studentRoute chi.Router) {
		studentRoute.Use(middleware.RequireRole(sec.RoleStudent))

		studentRoute.Post("/{id}/purchase-free", handler.purchaseFree)
		studentRoute.Post("/{id}/checkout", handler.checkout)
	})
}

func (handler *Handler) purchaseFree(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	purchase, err := handler.service.PurchaseFree(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, purchase)
}

func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Checkout(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	purchase, err := handler.service.Complete(request.Context(), requestutil.Param(request, "id"), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, purchase)
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	purchases, total, err := handler.service.ListOwn(request.Context(), identity, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, purchases, pagination.NewMeta(params.Page, params.Limit, total))
}
