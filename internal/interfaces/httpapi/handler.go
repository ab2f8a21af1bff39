package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/usecase"
)

type Handler struct {
	ingestionService  *usecase.IngestionService
	enrichmentService *usecase.EnrichmentService
	recomputeService  *usecase.RecomputeService
	reviewService     *usecase.ReviewService
	ratingService     *usecase.RatingService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	ingestionService *usecase.IngestionService,
	enrichmentService *usecase.EnrichmentService,
	recomputeService *usecase.RecomputeService,
	reviewService *usecase.ReviewService,
	ratingService *usecase.RatingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestionService:  ingestionService,
		enrichmentService: enrichmentService,
		recomputeService:  recomputeService,
		reviewService:     reviewService,
		ratingService:     ratingService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(body io.Reader, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
