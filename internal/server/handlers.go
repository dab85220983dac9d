package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
	"github.com/hyperjump/michibiki/internal/storage"
	coursesync "github.com/hyperjump/michibiki/internal/sync"
)

type adviseRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	var req adviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.logger.Debug("advise request", zap.Int("message_len", len(req.Message)))
	advice, err := s.engine.Advise(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("advise failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, advice)
}

type recommendRequest struct {
	Skill    models.SkillGap `json:"skill"`
	Language string          `json:"language,omitempty"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Skill.QueryEN == "" {
		s.respondError(w, http.StatusBadRequest, "skill.query_en is required")
		return
	}
	s.logger.Debug("recommend request", zap.String("query_en", req.Skill.QueryEN))
	courses, err := s.engine.RecommendSkill(r.Context(), req.Skill, models.Language(req.Language))
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("recommend failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"skill_gap":         req.Skill.DisplayName,
		"suggested_courses": courses,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("sync request")
	res, err := s.syncer.Run(r.Context())
	if err != nil {
		if errors.Is(err, coursesync.ErrPassRunning) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("sync failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.client.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "course not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empty, err := s.client.Empty(ctx)
	if err != nil {
		s.logger.Error("status: check index failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"indexed":           !empty,
		"vector_index_size": s.client.Size(),
		"config": map[string]interface{}{
			"embedding_dimensions": s.cfg.Embedding.Dimensions,
			"max_distance":         s.cfg.Retrieval.MaxDistance,
			"sources":              len(s.cfg.Catalog.Sources),
			"database_path":        s.cfg.Storage.DatabasePath,
			"vector_index_path":    s.cfg.Storage.VectorIndexPath,
		},
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.cfg.Storage.DatabasePath,
		s.cfg.Storage.VectorIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
