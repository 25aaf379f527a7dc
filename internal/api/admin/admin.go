package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"tetrabet_backend/internal/api/apierr"
	dto "tetrabet_backend/internal/api/dto/admin"
	"tetrabet_backend/internal/converter"
	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/service"
	"tetrabet_backend/pkg/req"
	"tetrabet_backend/pkg/resp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HandlerDeps struct {
	Economics service.EconomicsService
	Batches   service.BatchService
	Games     service.GameService
	Log       *slog.Logger
}

// Handler - операторская консоль: экономика, пачки, джекпот
type Handler struct {
	economics service.EconomicsService
	batches   service.BatchService
	games     service.GameService
	log       *slog.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		economics: deps.Economics,
		batches:   deps.Batches,
		games:     deps.Games,
		log:       deps.Log,
	}
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.economics.GetConfig(r.Context())
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToConfigResponse(*cfg))
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.ConfigPatchRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.economics.UpdateConfig(r.Context(), converter.ToConfigPatch(payload))
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToConfigResponse(*cfg))
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batches.ListBatches(r.Context())
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBatchResponses(batches))
}

func (h *Handler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.GenerateBatchRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := h.batches.GenerateBatch(r.Context(), converter.ToGenerateBatch(payload))
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToBatchResponse(*batch))
}

func (h *Handler) ActiveBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.batches.GetActiveBatch(r.Context())
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBatchResponse(*batch))
}

func (h *Handler) ActivateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := batchID(w, r)
	if !ok {
		return
	}

	if err := h.batches.ActivateBatch(r.Context(), id); err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeactivateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := batchID(w, r)
	if !ok {
		return
	}

	if err := h.batches.DeactivateBatch(r.Context(), id); err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BatchProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := batchID(w, r)
	if !ok {
		return
	}

	report, err := h.batches.BatchProgress(r.Context(), id)
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToProgressResponse(*report))
}

// ListSlots - ?status=all|played|unplayed&sort=target_score|max_payout|played_at&limit=&offset=
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := batchID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	slots, err := h.batches.ListSlots(r.Context(), model.SlotQuery{
		BatchID: id,
		Status:  model.SlotStatus(q.Get("status")),
		Sort:    model.SlotSort(q.Get("sort")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSlotResponses(slots))
}

func (h *Handler) Jackpot(w http.ResponseWriter, r *http.Request) {
	pool, err := h.games.GetJackpot(r.Context())
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToAdminJackpotResponse(*pool))
}

func batchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "batch id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
