package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	logpkg "github.com/kailas-cloud/recipeq/internal/logger"
	healthuc "github.com/kailas-cloud/recipeq/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipeq/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipeq/internal/usecase/search"
)

// DefaultMaxBodyBytes caps request bodies unless WithMaxBodyBytes says otherwise.
const DefaultMaxBodyBytes int64 = 1 << 20

// recipeRoutes binds each recipe resource path to its scope.
var recipeRoutes = []struct {
	path  string
	scope schema.Scope
}{
	{"/api/food", schema.All},
	{"/api/favourite", schema.Favourite},
}

// Server implements the recipeq HTTP API.
type Server struct {
	search        *searchuc.Service
	recipes       *recipeuc.Service
	health        *healthuc.Service
	errorHandlers []errorHandler
	maxBodyBytes  int64
}

// NewServer creates the HTTP handler set.
func NewServer(search *searchuc.Service, recipes *recipeuc.Service, health *healthuc.Service) *Server {
	return &Server{
		search:        search,
		recipes:       recipes,
		health:        health,
		errorHandlers: defaultErrorHandlers(),
		maxBodyBytes:  DefaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes overrides the request body cap.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/search", s.Search)

	for _, rt := range recipeRoutes {
		r.Get(rt.path, s.GetRecipe(rt.scope))
		r.Put(rt.path, s.UpdateRecipe(rt.scope))
		r.Post(rt.path, s.CreateRecipe(rt.scope))
		r.Delete(rt.path, s.DeleteRecipe(rt.scope))
	}
}

// WriteResponse acknowledges a successful write.
type WriteResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Search evaluates the q parameter. Zero matches is a 404.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r, "q", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	docs, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(docs) == 0 {
		writeError(w, http.StatusNotFound, CodeResultNotFound, "result is not found in database")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetRecipe returns a handler fetching one recipe of scope by ?id=.
func (s *Server) GetRecipe(scope schema.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.recipeID(w, r)
		if !ok {
			return
		}
		doc, err := s.recipes.Get(r.Context(), scope, id)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// UpdateRecipe returns a handler setting attributes on the recipe named by ?id=.
// The id in the path wins over any id in the body.
func (s *Server) UpdateRecipe(scope schema.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.recipeID(w, r)
		if !ok {
			return
		}
		body, ok := s.decodeBody(w, r)
		if !ok {
			return
		}
		if err := s.recipes.Update(r.Context(), scope, id, body); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, WriteResponse{ID: id, Message: fmt.Sprintf("recipe %s updated", id)})
	}
}

// CreateRecipe returns a handler inserting the body as a new recipe of scope.
func (s *Server) CreateRecipe(scope schema.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.decodeBody(w, r)
		if !ok {
			return
		}
		id, err := s.recipes.Create(r.Context(), scope, body)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, WriteResponse{ID: id, Message: fmt.Sprintf("recipe %s created", id)})
	}
}

// DeleteRecipe returns a handler removing the recipe named by ?id=.
func (s *Server) DeleteRecipe(scope schema.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.recipeID(w, r)
		if !ok {
			return
		}
		if err := s.recipes.Delete(r.Context(), scope, id); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, WriteResponse{ID: id, Message: fmt.Sprintf("recipe %s deleted", id)})
	}
}

// HealthCheck reports component health. Anything but healthy is a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContext(r.Context())
}

// recipeID reads ?id=. Content checks are left to the service.
func (s *Server) recipeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := queryParam(r, "id", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// decodeBody enforces a JSON content type and decodes the body.
// A well-formed body that is not an object yields a nil map so the service rejects it.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if !isJSON(r) {
		writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "content type is not supported")
		return nil, false
	}

	var v any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return nil, false
		}
		s.log(r).Debug("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeBadRequest, "request body is not valid json")
		return nil, false
	}

	body, isObject := v.(map[string]any)
	if !isObject {
		return nil, true
	}
	return body, true
}
