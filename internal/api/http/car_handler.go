package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"

	"github.com/gorilla/mux"
)

type CarHandler struct {
	carSvc service.CarService
}

func NewCarHandler(carSvc service.CarService) *CarHandler {
	return &CarHandler{carSvc: carSvc}
}

func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(q.Get("page_size"), 10, 32)
	onlyAvailable := q.Get("available") == "true"

	cars, total, err := h.carSvc.ListCars(r.Context(), onlyAvailable, int32(page), int32(pageSize))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cars": cars, "total": total})
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := carID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid car id")
		return
	}
	car, err := h.carSvc.GetCar(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var car domain.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.carSvc.CreateCar(r.Context(), &car); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := carID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid car id")
		return
	}
	var car domain.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	car.ID = id
	if err := h.carSvc.UpdateCar(r.Context(), &car); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := carID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid car id")
		return
	}
	if err := h.carSvc.DeleteCar(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "car deleted")
}

type manualRentalRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Rent handles POST /api/cars/{id}/rent: a manual (non-payment) rental for
// the authenticated user.
func (h *CarHandler) Rent(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := carID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid car id")
		return
	}
	var req manualRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	car, err := h.carSvc.RentCarManually(r.Context(), claims.UserID, id, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "car rented successfully", "car": car})
}

func (h *CarHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := carID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid car id")
		return
	}
	if err := h.carSvc.ReturnCar(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "car returned")
}

func carID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
