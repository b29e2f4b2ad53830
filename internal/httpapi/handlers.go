package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/arbor/internal/tree"
)

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
	Root   string `json:"root"`
	Nodes  int    `json:"nodes"`
}

func (s *Server) help(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(helpHTML))
}

func (s *Server) health(c *gin.Context) {
	reply(c, http.StatusOK, "OK", Health{
		Status: "ok",
		Root:   s.manager.RootID(),
		Nodes:  s.manager.Len(),
	})
}

// reset restores the seed tree and returns the full dump.
func (s *Server) reset(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.manager.Reset(ctx); err != nil {
		fail(c, err)
		return
	}
	snaps, err := s.manager.DumpAll(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	reply(c, http.StatusOK, "tree reset to seed data", snaps)
}

func (s *Server) details(c *gin.Context) {
	ids, err := params(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	snap, err := s.manager.NodeDetails(c.Request.Context(), ids[0])
	if err != nil {
		fail(c, err)
		return
	}
	reply(c, http.StatusOK, "OK", snap)
}

func (s *Server) subtree(c *gin.Context) {
	ids, err := params(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	snaps, err := s.manager.DumpSubtree(c.Request.Context(), ids[0])
	if err != nil {
		fail(c, err)
		return
	}
	reply(c, http.StatusOK, "OK", snaps)
}

func (s *Server) addChild(c *gin.Context) {
	ids, err := params(c, "id", "child")
	if err != nil {
		fail(c, err)
		return
	}
	parent, child := ids[0], ids[1]
	snap, err := s.manager.Add(c.Request.Context(), parent, child)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/v1/nodes/"+child)
	reply(c, http.StatusCreated, fmt.Sprintf("node %s attached to %s", child, parent), snap)
}

// move reparents :id under :dest and returns the destination's details.
func (s *Server) move(c *gin.Context) {
	ids, err := params(c, "id", "dest")
	if err != nil {
		fail(c, err)
		return
	}
	source, dest := ids[0], ids[1]
	ctx := c.Request.Context()
	if err := s.manager.Move(ctx, dest, source); err != nil {
		fail(c, err)
		return
	}
	snap, err := s.manager.NodeDetails(ctx, dest)
	if err != nil {
		fail(c, err)
		return
	}
	reply(c, http.StatusOK, fmt.Sprintf("node %s reparented to %s", source, dest), snap)
}

func (s *Server) layers(c *gin.Context) {
	depth := tree.DefaultLayerDepth
	if raw := c.Query("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, fmt.Errorf("%w: depth must be a positive integer, got %q", errBadRequest, raw))
			return
		}
		depth = n
	}
	reply(c, http.StatusOK, "OK", s.manager.Layers(depth))
}
