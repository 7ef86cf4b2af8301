package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keagan/promoreel/internal/pipeline"
	"github.com/keagan/promoreel/internal/store"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createPass1(c *gin.Context) {
	var req pipeline.Pass1Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.confinePass1(&req); err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.runner.Pass1(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) render(c *gin.Context) {
	var req pipeline.Pass2Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Artifact = c.Param("id")
	if err := s.confinePass2(&req); err != nil {
		s.fail(c, err)
		return
	}

	// the store is authoritative for the API; paths are not accepted here
	if _, err := s.store.Get(c.Request.Context(), req.Artifact); err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.runner.Pass2(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listArtifacts(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": list})
}

func (s *Server) getArtifact(c *gin.Context) {
	a, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) deleteArtifact(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) schema(c *gin.Context) {
	sc, err := pipeline.Schema(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sc)
}

// fail maps pipeline and store errors to status codes
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case pipeline.IsValidation(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
