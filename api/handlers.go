package api

import (
	"encoding/base64"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"noteboard/domain"
	"noteboard/errors"
	"noteboard/services"
)

var validate = validator.New()

// BoardHandler exposes the board over HTTP. Callers are identified by the
// address the auth middleware resolved; owner privileges are enforced by the
// service, never here.
type BoardHandler struct {
	log   *slog.Logger
	board services.IBoardService
}

func NewBoardHandler(log *slog.Logger, board services.IBoardService) *BoardHandler {
	return &BoardHandler{log: log, board: board}
}

type storeNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

type permitNoteRequest struct {
	Content string `json:"content" validate:"required"`
	// Deadline is a unix timestamp in seconds.
	Deadline int64 `json:"deadline" validate:"required"`
	// Signature is the base64-encoded permit blob.
	Signature string `json:"signature" validate:"required,base64"`
}

type setFeeRequest struct {
	// Fee in token minor units, decimal string (values exceed int64).
	Fee string `json:"fee" validate:"required,number"`
}

type withdrawRequest struct {
	To     string `json:"to" validate:"required"`
	Amount string `json:"amount" validate:"required,number"`
}

type noteResponse struct {
	ID      uint64 `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

// StoreNote POST /api/v1/notes
func (h *BoardHandler) StoreNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := Caller(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller identity")
		return
	}
	var req storeNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.board.StoreNote(r.Context(), caller, req.Content)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

// PermitAndStoreNote POST /api/v1/notes/permit
func (h *BoardHandler) PermitAndStoreNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := Caller(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller identity")
		return
	}
	var req permitNoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "signature is not valid base64")
		return
	}

	id, err := h.board.PermitAndStoreNote(r.Context(), caller, req.Content, time.Unix(req.Deadline, 0), sig)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

// GetNote GET /api/v1/notes/{id}
func (h *BoardHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an unsigned integer")
		return
	}
	note, err := h.board.Note(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{
		ID:      note.ID,
		Sender:  note.Sender.String(),
		Content: note.Content,
		At:      note.At.UnixNano(),
	})
}

// CountNotes GET /api/v1/notes/count
func (h *BoardHandler) CountNotes(w http.ResponseWriter, r *http.Request) {
	count, err := h.board.Count()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

// LastNoteID GET /api/v1/notes/last
func (h *BoardHandler) LastNoteID(w http.ResponseWriter, r *http.Request) {
	id, err := h.board.LastID()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": id})
}

// GetFee GET /api/v1/fee
func (h *BoardHandler) GetFee(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"fee": h.board.Fee().Text(10)})
}

// SetFee PUT /api/v1/fee
func (h *BoardHandler) SetFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := Caller(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller identity")
		return
	}
	var req setFeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	fee, ok := new(big.Int).SetString(req.Fee, 10)
	if !ok || fee.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "fee must be a non-negative decimal")
		return
	}

	if err := h.board.SetFee(r.Context(), caller, fee); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"fee": fee.Text(10)})
}

// Withdraw POST /api/v1/withdraw
func (h *BoardHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := Caller(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller identity")
		return
	}
	var req withdrawRequest
	if !h.decode(w, r, &req) {
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination address")
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative decimal")
		return
	}

	if err = h.board.Withdraw(r.Context(), caller, to, amount); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"to": to.String(), "amount": amount.Text(10)})
}

// GetBalance GET /api/v1/accounts/{addr}/balance
func (h *BoardHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	balance, err := h.board.BalanceOf(addr)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.Text(10)})
}

// GetAllowance GET /api/v1/accounts/{addr}/allowance
func (h *BoardHandler) GetAllowance(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	granted, err := h.board.AllowanceOf(addr)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": granted.Text(10)})
}

func (h *BoardHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeDomainError maps a board failure to its HTTP status. Reentrant maps
// to 503: the board was busy, the caller may retry.
func (h *BoardHandler) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case goerrors.Is(err, errors.ErrEmptyMessage),
		goerrors.Is(err, errors.ErrZeroAddress),
		goerrors.Is(err, errors.ErrBadSignature),
		goerrors.Is(err, errors.ErrPermitExpired),
		goerrors.Is(err, errors.ErrPermitUnsupported):
		status = http.StatusBadRequest
	case goerrors.Is(err, errors.ErrInsufficientAllowance),
		goerrors.Is(err, errors.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case goerrors.Is(err, errors.ErrUnauthorized):
		status = http.StatusForbidden
	case goerrors.Is(err, errors.ErrOutOfRange),
		goerrors.Is(err, errors.ErrEmptyBoard):
		status = http.StatusNotFound
	case goerrors.Is(err, errors.ErrReentrant):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Error("Unexpected board failure", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
