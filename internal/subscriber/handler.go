package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/entity"
)

const maxBodyBytes = 1 << 20

// Handler exposes the subscriber HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the subscriber routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /subscribers", h.List)
	mux.HandleFunc("POST /subscribers", h.Create)
	mux.Handle("GET /subscribers/{id}", h.Lookup(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /subscribers/{id}", h.Lookup(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /subscribers/{id}", h.Lookup(http.HandlerFunc(h.Delete)))
}

// messageResponse is the body of every non-entity reply.
type messageResponse struct {
	Message string `json:"message"`
}

// CreateRequest is the body accepted by POST /subscribers.
type CreateRequest struct {
	Name                string `json:"name"`
	SubscribedToChannel string `json:"subscribedToChannel"`
}

type ctxKey struct{}

// FromContext returns the subscriber loaded by Lookup.
func FromContext(ctx context.Context) (*entity.Subscriber, bool) {
	s, ok := ctx.Value(ctxKey{}).(*entity.Subscriber)
	return s, ok
}

// Lookup loads the subscriber named by the {id} path value. It answers
// 404 or 500 itself and otherwise passes the subscriber on in the context.
func (h *Handler) Lookup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s, err := h.svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				h.writeMessage(w, http.StatusNotFound, "Cannot find subscriber")
				return
			}
			h.logger.Errorw("subscriber lookup failed", "id", id, "err", err)
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list subscribers failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, _ := FromContext(r.Context())
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Debugw("invalid subscriber payload", "err", err)
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.svc.Create(r.Context(), req.Name, req.SubscribedToChannel)
	if err != nil {
		h.logger.Warnw("create subscriber failed", "err", err)
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Infow("subscriber created", "id", s.ID, "channel", s.SubscribedToChannel)
	h.writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, _ := FromContext(r.Context())
	var p entity.Patch
	if err := h.decode(w, r, &p); err != nil {
		h.logger.Debugw("invalid subscriber patch", "id", existing.ID, "err", err)
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.svc.Apply(r.Context(), existing, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Cannot find subscriber")
			return
		}
		h.logger.Warnw("update subscriber failed", "id", existing.ID, "err", err)
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, _ := FromContext(r.Context())
	if err := h.svc.Delete(r.Context(), existing.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Cannot find subscriber")
			return
		}
		h.logger.Errorw("delete subscriber failed", "id", existing.ID, "err", err)
		h.writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Infow("subscriber deleted", "id", existing.ID)
	h.writeMessage(w, http.StatusOK, "Deleted Subscriber")
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, messageResponse{Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
