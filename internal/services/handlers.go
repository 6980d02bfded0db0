package services

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avviso/pkg/domain"
	dErrors "avviso/pkg/domain-errors"
	"avviso/pkg/platform/httputil"
	"avviso/pkg/requestcontext"
)

// Handler exposes the service management proxy endpoints. Callers
// authenticate with a service API token whose subscription claim names the
// one service they own; cross-service access is always forbidden.
type Handler struct {
	client *Client
	logger *slog.Logger
}

func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// serviceWithKeys is the merged GetService response.
type serviceWithKeys struct {
	ServiceDetail
	PrimaryKey   string `json:"primary_key"`
	SecondaryKey string `json:"secondary_key"`
}

// GetService handles GET /api/v1/services/{serviceID}: the upstream service
// detail merged with its subscription keys.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serviceID, err := h.ownedService(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.client.GetService(ctx, serviceID)
	if err != nil {
		h.logger.WarnContext(ctx, "get service failed",
			"service_id", serviceID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	keys, err := h.client.GetSubscriptionKeys(ctx, serviceID)
	if err != nil {
		h.logger.WarnContext(ctx, "get subscription keys failed",
			"service_id", serviceID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, serviceWithKeys{
		ServiceDetail: *detail,
		PrimaryKey:    keys.PrimaryKey,
		SecondaryKey:  keys.SecondaryKey,
	})
}

type uploadLogoRequest struct {
	Logo string `json:"logo"`
}

// UploadLogo handles PUT /api/v1/services/{serviceID}/logo. The upstream's
// 201 is flattened to a 200 with an empty body.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serviceID, err := h.ownedService(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req uploadLogoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if req.Logo == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "logo is required"))
		return
	}
	if _, err := base64.StdEncoding.DecodeString(req.Logo); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "logo must be base64 encoded"))
		return
	}

	if err := h.client.UploadLogo(ctx, serviceID, req.Logo); err != nil {
		h.logger.WarnContext(ctx, "upload logo failed",
			"service_id", serviceID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

// ownedService parses the path service ID and enforces that the caller's
// subscription owns it.
func (h *Handler) ownedService(r *http.Request) (domain.ServiceID, error) {
	serviceID, err := domain.ParseServiceID(chi.URLParam(r, "serviceID"))
	if err != nil {
		return "", err
	}
	if requestcontext.SubscriptionID(r.Context()) != serviceID.String() {
		return "", dErrors.New(dErrors.CodeForbidden, "the caller does not own this service")
	}
	return serviceID, nil
}
