// Package mirrorhttp exposes the mirror registry over HTTP.
//
// The handler serves a small read-only API: registered types can be listed,
// inspected field by field, rendered as JSON Schema, and compared with the
// fuzzy type matcher. All responses are JSON. Every request carries an
// X-Request-ID header and is logged through zap.
package mirrorhttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"

	"github.com/noaland/mirror"
	"github.com/noaland/mirror/typematch"
)

// WildcardName is the query value that selects typematch.Wildcard in the
// match endpoint.
const WildcardName = "wildcard"

// TypeSummary is one entry in the type listing.
type TypeSummary struct {
	Name      string `json:"name"`
	NumFields int    `json:"num_fields"`
}

// FieldDetail describes a single registered field.
type FieldDetail struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Offset uint64 `json:"offset"`
	Type   string `json:"type"`
}

// TypeDetail is the full view of a registered type: its fields in
// registration order plus the positional type catalog.
type TypeDetail struct {
	Name       string        `json:"name"`
	Fields     []FieldDetail `json:"fields"`
	FieldTypes []string      `json:"field_types"`
}

// MatchResult reports the outcome of one matcher comparison.
type MatchResult struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Match bool   `json:"match"`
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler serves the registry API.
type Handler struct {
	log *zap.Logger
	mux chi.Router
}

// NewHandler builds a Handler with all routes and middleware wired. A nil
// logger disables request logging.
func NewHandler(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}

	h := &Handler{log: log, mux: chi.NewRouter()}

	h.mux.Use(RequestID())
	h.mux.Use(Logging(log))

	h.mux.Get("/healthz", h.handleHealth)
	h.mux.Route("/v1", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.Get("/types/{name}", h.handleGetType)
		r.Get("/types/{name}/schema", h.handleTypeSchema)
		r.Get("/match", h.handleMatch)
	})

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	infos := mirror.Infos()

	summaries := make([]TypeSummary, 0, len(infos))
	for _, in := range infos {
		summaries = append(summaries, TypeSummary{
			Name:      in.Name(),
			NumFields: in.NumFields(),
		})
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleGetType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	in, ok := mirror.LookupName(name)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, fmt.Sprintf("type not registered: %s", name))
		return
	}

	detail := TypeDetail{
		Name:       in.Name(),
		Fields:     make([]FieldDetail, 0, in.NumFields()),
		FieldTypes: make([]string, 0, in.NumFields()),
	}
	for _, f := range in.Fields() {
		detail.Fields = append(detail.Fields, FieldDetail{
			Name:   f.Name,
			Index:  f.Index,
			Offset: uint64(f.Offset),
			Type:   f.Type.String(),
		})
	}
	for _, t := range in.FieldTypes() {
		detail.FieldTypes = append(detail.FieldTypes, t.String())
	}

	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleTypeSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	in, ok := mirror.LookupName(name)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, fmt.Sprintf("type not registered: %s", name))
		return
	}

	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.ReflectFromType(in.GoType())

	h.writeJSON(w, http.StatusOK, schema)
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	xName := r.URL.Query().Get("x")
	yName := r.URL.Query().Get("y")
	if xName == "" || yName == "" {
		h.writeError(w, r, http.StatusBadRequest, "query parameters x and y are required")
		return
	}

	x, err := h.resolveType(xName)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	y, err := h.resolveType(yName)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, MatchResult{
		X:     xName,
		Y:     yName,
		Match: typematch.Match(x, y),
	})
}

// resolveType maps a query value to a reflect.Type. The literal "wildcard"
// selects typematch.Wildcard; anything else must be a registered name.
func (h *Handler) resolveType(name string) (reflect.Type, error) {
	if name == WildcardName {
		return reflect.TypeFor[typematch.Wildcard](), nil
	}
	in, ok := mirror.LookupName(name)
	if !ok {
		return nil, fmt.Errorf("type not registered: %s", name)
	}
	return in.GoType(), nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: GetRequestID(r.Context()),
	})
}
