package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/authn"
	"github.com/designsystemsinternational/react-admin-github/internal/models"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

const maxBodyBytes = 25 << 20 // attachments travel base64 in the body

// Handler holds the API route handlers.
type Handler struct {
	svc  *resource.Service
	auth *authn.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *resource.Service, auth *authn.Service) *Handler {
	return &Handler{svc: svc, auth: auth}
}

// Login handles POST /auth.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid JSON body: %w", apperr.ErrBadRequest))
		return
	}
	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Proxy handles every resource operation on the /api endpoint, selecting
// the operation from the method and query, the way the single proxy
// function behind this API expects.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.save(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		writeError(w, fmt.Errorf("HTTP method not recognized: %w", apperr.ErrBadRequest))
	}
}

// get dispatches GET /api to getOne, getMany, or list.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := q.Get("resource")
	if res == "" {
		writeError(w, fmt.Errorf("resource is required: %w", apperr.ErrBadRequest))
		return
	}

	switch {
	case q.Get("id") != "":
		doc, err := h.svc.GetOne(r.Context(), res, q.Get("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, doc)

	case q.Get("ids") != "":
		var ids []string
		if err := json.Unmarshal([]byte(q.Get("ids")), &ids); err != nil {
			writeError(w, fmt.Errorf("ids must be a JSON array: %w", apperr.ErrBadRequest))
			return
		}
		docs, err := h.svc.GetMany(r.Context(), res, ids)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, docs)

	default:
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("perPage"))
		items, total, err := h.svc.List(r.Context(), resource.ListParams{
			Resource:  res,
			Page:      page,
			PerPage:   perPage,
			SortField: q.Get("sortField"),
			SortOrder: q.Get("sortOrder"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writePage(w, items, total)
	}
}

// save dispatches PUT /api to update when the payload carries an id,
// create otherwise.
func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req struct {
		Resource string          `json:"resource"`
		Data     models.Document `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid JSON body: %w", apperr.ErrBadRequest))
		return
	}
	if req.Resource == "" || req.Data == nil {
		writeError(w, fmt.Errorf("resource and data are required: %w", apperr.ErrBadRequest))
		return
	}

	if id, _ := req.Data["id"].(string); id != "" {
		doc, err := h.svc.Update(r.Context(), req.Resource, req.Data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, doc)
		return
	}

	doc, err := h.svc.Create(r.Context(), req.Resource, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, doc)
}

// remove handles DELETE /api, returning the removed document as
// confirmation payload.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, id := q.Get("resource"), q.Get("id")
	if res == "" || id == "" {
		writeError(w, fmt.Errorf("resource and id are required: %w", apperr.ErrBadRequest))
		return
	}
	doc, err := h.svc.Delete(r.Context(), res, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}

// Preview handles GET /preview. Access is granted solely by the preview
// token; the primary bearer credential is not required. The raw bytes go
// out base64-encoded with the sniffed content type in the header.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	content, contentType, err := h.svc.Preview(r.Context(), q.Get("path"), q.Get("previewToken"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(base64.StdEncoding.EncodeToString(content)))
}
