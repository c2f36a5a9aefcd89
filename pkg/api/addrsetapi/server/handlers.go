package server

import (
	"errors"
	"net/http"

	"github.com/els0r/telemetry/logging"
	"github.com/gin-gonic/gin"

	"github.com/nrescobar/sentryrules/pkg/addrset"
	"github.com/nrescobar/sentryrules/pkg/addrset/resolver"
	"github.com/nrescobar/sentryrules/pkg/api/addrsetapi"
	apijson "github.com/nrescobar/sentryrules/pkg/api/json"
)

func (s *Server) postCompile(c *gin.Context) {
	var req addrsetapi.CompileRequest
	if err := apijson.Decode(c.Request.Body, &req); err != nil {
		s.writeJSON(c, http.StatusBadRequest, errResponse(http.StatusBadRequest, err))
		return
	}
	if req.Name == "" {
		s.writeJSON(c, http.StatusBadRequest, errResponse(http.StatusBadRequest, errors.New("name must not be empty")))
		return
	}

	vars := resolver.Chain{Local: addrset.StaticVarTable(req.Vars), Remote: s.remote}
	sh, err := addrset.Parse(req.Expression, vars)
	if err != nil {
		var ae *addrset.Error
		status := http.StatusInternalServerError
		if errors.As(err, &ae) {
			status = addrsetapi.HTTPStatusForKind(ae.Kind)
		}
		s.writeJSON(c, status, errResponse(status, err))
		return
	}

	s.mu.Lock()
	if old, ok := s.sets[req.Name]; ok {
		old.Release()
	}
	s.sets[req.Name] = sh
	s.mu.Unlock()

	fp := sh.Fingerprint()
	logging.FromContext(c.Request.Context()).Info("compiled address set",
		"name", req.Name, "fingerprint", fp)

	c.Header("ETag", fp)
	s.writeJSON(c, http.StatusOK, addrsetapi.CompileResponse{
		Name:        req.Name,
		V4Count:     len(sh.Intervals(addrset.FamilyV4)),
		V6Count:     len(sh.Intervals(addrset.FamilyV6)),
		Fingerprint: fp,
	})
}

func (s *Server) getInspect(c *gin.Context) {
	name := c.Param(nameKey)
	sh, ok := s.lookupSet(name)
	if !ok {
		s.writeJSON(c, http.StatusNotFound, errResponse(http.StatusNotFound, errors.New("no such address set")))
		return
	}

	printed := sh.Print()
	s.writeJSON(c, http.StatusOK, addrsetapi.InspectResponse{
		Name: name,
		V4:   printed[addrset.FamilyV4],
		V6:   printed[addrset.FamilyV6],
	})
}

func (s *Server) getLookup(c *gin.Context) {
	name := c.Param(nameKey)
	sh, ok := s.lookupSet(name)
	if !ok {
		s.writeJSON(c, http.StatusNotFound, errResponse(http.StatusNotFound, errors.New("no such address set")))
		return
	}

	addrStr := c.Query("addr")
	addr, err := addrset.ParseValue(addrStr)
	if err != nil {
		s.writeJSON(c, http.StatusBadRequest, errResponse(http.StatusBadRequest, err))
		return
	}

	iv, matched := sh.Lookup(addr)
	resp := addrsetapi.LookupResponse{Matched: matched}
	if matched {
		resp.Interval = iv.String()
	}
	s.writeJSON(c, http.StatusOK, resp)
}

func (s *Server) lookupSet(name string) (*addrset.SetHead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.sets[name]
	return sh, ok
}

// writeJSON encodes val via json-iterator/go rather than gin's default
// encoding/json-backed c.JSON.
func (s *Server) writeJSON(c *gin.Context, status int, val interface{}) {
	c.Status(status)
	if err := apijson.Response(c.Writer, val); err != nil {
		logging.FromContext(c.Request.Context()).Error(err)
	}
}

func errResponse(status int, err error) gin.H {
	return gin.H{"status_code": status, "error": err.Error()}
}
