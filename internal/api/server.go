package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/version"
	"github.com/samcharles93/charseed/internal/webui"
)

type Server struct {
	store    *GenerationStore
	service  *GenerationService
	provider EngineProvider
	log      logger.Logger
	clock    func() time.Time
}

func NewServer(store *GenerationStore, provider EngineProvider, log logger.Logger) *Server {
	if store == nil {
		store = NewGenerationStore(DefaultStoreCapacity)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store:    store,
		service:  NewGenerationService(provider),
		provider: provider,
		log:      log,
		clock:    time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/v1/status", s.handleStatus)
	e.POST("/v1/model/load", s.handleLoadModel)
	e.POST("/v1/seed", s.handleSeed)

	e.POST("/v1/generations", s.handleCreateGeneration)
	e.GET("/v1/generations", s.handleListGenerations)
	e.GET("/v1/generations/:id", s.handleGetGeneration)
	e.DELETE("/v1/generations/:id", s.handleDeleteGeneration)

	// Demo page
	e.GET("/*", echo.WrapHandler(http.FileServer(webui.StaticFS())))
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Resolve(),
	})
}

func (s *Server) handleStatus(c *echo.Context) error {
	st := s.provider.Status()
	return c.JSON(http.StatusOK, StatusResponse{
		Status:      st.Line(),
		ModelPath:   st.Path,
		Available:   st.Available,
		Loaded:      st.Loaded,
		Model:       st.Metadata,
		Fingerprint: st.Fingerprint,
	})
}

func (s *Server) handleLoadModel(c *echo.Context) error {
	res, err := s.provider.Load(c.Request().Context())
	if err != nil {
		s.log.Warn("model load failed", "error", err)
		return writeClassified(c, err)
	}
	return c.JSON(http.StatusOK, LoadModelResponse{
		Status:      s.provider.Status().Line(),
		Model:       res.Metadata,
		Fingerprint: res.Fingerprint,
	})
}

func (s *Server) handleSeed(c *echo.Context) error {
	rngSeed := int64(-1)
	if v := c.QueryParam("rng_seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeBadRequest(c, "rng_seed must be an integer")
		}
		rngSeed = n
	}
	seed, err := s.service.RandomSeed(c.Request().Context(), rngSeed)
	if err != nil {
		return writeClassified(c, err)
	}
	return c.JSON(http.StatusOK, SeedResponse{Seed: seed})
}

func (s *Server) handleCreateGeneration(c *echo.Context) error {
	req, err := decodeJSON[GenerationRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	var writer *SSEStreamWriter
	var streamWriter StreamWriter
	if req.Stream != nil && *req.Stream {
		w, err := NewSSEStreamWriter(c)
		if err != nil {
			return writeBadRequest(c, err.Error())
		}
		writer = w
		streamWriter = w
	}

	gen, err := s.service.CreateGeneration(c.Request().Context(), &req, streamWriter)
	if gen != nil {
		s.store.Save(*gen)
	}
	if err != nil {
		s.log.Debug("generation failed", "error", err)
		if writer != nil && writer.Started() {
			return nil
		}
		return writeClassified(c, err)
	}
	s.log.Debug("generation completed", "id", gen.ID, "steps", gen.Steps, "elapsed_ms", gen.ElapsedMS)

	if writer != nil {
		return nil
	}
	return c.JSON(http.StatusOK, gen)
}

func (s *Server) handleListGenerations(c *echo.Context) error {
	return c.JSON(http.StatusOK, GenerationList{
		Object: "list",
		Data:   s.store.List(),
	})
}

func (s *Server) handleGetGeneration(c *echo.Context) error {
	gen, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, gen)
}

func (s *Server) handleDeleteGeneration(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, DeleteGenerationResp{
		ID:      id,
		Object:  "generation",
		Deleted: true,
	})
}

// decodeJSON decodes a single JSON value. An empty body decodes to the zero
// value.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return out, err
	}
	return out, nil
}
