package addresses

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kirastore/backend/internal/service/models/address"
	"github.com/kirastore/backend/internal/service/services/addresssvc"
	"github.com/kirastore/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	CreateAddress(ctx context.Context, a address.Address) (address.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID int64, patch *address.PatchAddressModel) error
	DeleteAddress(ctx context.Context, userID, addressID int64) error
	ListAddresses(ctx context.Context, userID int64) ([]address.Address, error)
}

type createAddressRequest struct {
	UserID     int64  `json:"userId"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes"`
	IsDefault  bool   `json:"isDefault"`
}

func (req *createAddressRequest) validate() []httperr.FieldError {
	var errs []httperr.FieldError

	if req.UserID <= 0 {
		errs = append(errs, httperr.FieldError{Field: "userId", Message: "must be positive"})
	}
	if strings.TrimSpace(req.Street) == "" {
		errs = append(errs, httperr.FieldError{Field: "street", Message: "is required"})
	}
	if strings.TrimSpace(req.City) == "" {
		errs = append(errs, httperr.FieldError{Field: "city", Message: "is required"})
	}
	if strings.TrimSpace(req.Province) == "" {
		errs = append(errs, httperr.FieldError{Field: "province", Message: "is required"})
	}
	if strings.TrimSpace(req.PostalCode) == "" {
		errs = append(errs, httperr.FieldError{Field: "postalCode", Message: "is required"})
	}

	return errs
}

type updateAddressRequest struct {
	UserID     int64   `json:"userId"`
	Street     *string `json:"street"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postalCode"`
	Notes      *string `json:"notes"`
	IsDefault  *bool   `json:"isDefault"`
}

// CreateAddress persists a new address in the user's address book.
func CreateAddress(w http.ResponseWriter, r *http.Request, service service) {
	var req createAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "failed to decode request body")
		slog.Error("Error decoding create address request", "error", err)

		return
	}

	if errs := req.validate(); len(errs) > 0 {
		httperr.Validation(w, errs)

		return
	}

	created, err := service.CreateAddress(r.Context(), address.Address{
		UserID:     req.UserID,
		Street:     req.Street,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Notes:      req.Notes,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusCreated, created)
}

// UpdateAddress applies a partial update to one address.
func UpdateAddress(w http.ResponseWriter, r *http.Request, service service) {
	addressID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "failed to decode request body")
		slog.Error("Error decoding update address request", "error", err)

		return
	}

	if req.UserID <= 0 {
		httperr.Validation(w, []httperr.FieldError{{Field: "userId", Message: "must be positive"}})

		return
	}

	patch := &address.PatchAddressModel{
		Street:     req.Street,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Notes:      req.Notes,
		IsDefault:  req.IsDefault,
	}

	err := service.UpdateAddress(r.Context(), req.UserID, addressID, patch)
	if errors.Is(err, addresssvc.ErrAddressNotFound) {
		httperr.NotFound(w, "address not found")

		return
	}
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAddress removes one address, promoting a new default if needed.
func DeleteAddress(w http.ResponseWriter, r *http.Request, service service) {
	addressID, ok := pathID(w, r)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		httperr.BadRequest(w, "userId query parameter is required")

		return
	}

	err = service.DeleteAddress(r.Context(), userID, addressID)
	if errors.Is(err, addresssvc.ErrAddressNotFound) {
		httperr.NotFound(w, "address not found")

		return
	}
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListAddresses retrieves the user's address book.
func ListAddresses(w http.ResponseWriter, r *http.Request, service service) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		httperr.BadRequest(w, "userId query parameter is required")

		return
	}

	list, err := service.ListAddresses(r.Context(), userID)
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusOK, list)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.BadRequest(w, "invalid address id")

		return 0, false
	}

	return id, true
}
