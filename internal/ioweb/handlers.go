package ioweb

import (
	"errors"
	"io"
	"net/http"
	"strings"

	fgrdb "github.com/eufgis/fgrdb/pkg"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/gin-gonic/gin"
)

// pageArgs are the paging query parameters of list routes.
type pageArgs struct {
	Start int `form:"start,default=0" binding:"min=0"`
	Limit int `form:"limit,default=25" binding:"min=0"`
}

func (p pageArgs) page() store.Page {
	return store.Page{Start: p.Start, Limit: p.Limit}
}

func bindPage(c *gin.Context) (store.Page, bool) {
	var args pageArgs
	if err := c.ShouldBindQuery(&args); err != nil {
		writeError(c, BadRequestError(err))
		return store.Page{}, false
	}
	return args.page(), true
}

// bindBody decodes a JSON body. An empty body leaves out untouched.
func bindBody(c *gin.Context, out any) bool {
	err := c.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(c, BadRequestError(err))
	return false
}

// ifRevision returns the expected revision from the If-Match header,
// or the fallback if the header is absent.
func ifRevision(c *gin.Context, fallback string) string {
	if rev := strings.Trim(c.GetHeader("If-Match"), `" `); rev != "" {
		return rev
	}
	return fallback
}

// patchRevision removes the revision from a patch document and returns
// the expected revision.
func patchRevision(c *gin.Context, patch map[string]any) string {
	rev, _ := patch[record.FieldRev].(string)
	delete(patch, record.FieldRev)
	return ifRevision(c, rev)
}

func (s *Server) version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": fgrdb.Version,
		"build":   fgrdb.Build,
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	_, err := s.cat.ListDatasets(c.Request.Context(), store.Page{Limit: 1})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"healthy": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}

func (s *Server) listDatasets(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := s.cat.ListDatasets(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getDataset(c *gin.Context) {
	res, err := s.cat.GetDataset(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) createDataset(c *gin.Context) {
	var d record.Dataset
	if !bindBody(c, &d) {
		return
	}
	res, err := s.cat.CreateDataset(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) replaceDataset(c *gin.Context) {
	var d record.Dataset
	if !bindBody(c, &d) {
		return
	}
	ifRev := ifRevision(c, d.Rev)
	res, err := s.cat.ReplaceDataset(c.Request.Context(), c.Param("key"), d, ifRev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) patchDataset(c *gin.Context) {
	patch := make(map[string]any)
	if !bindBody(c, &patch) {
		return
	}
	ifRev := patchRevision(c, patch)
	res, err := s.cat.PatchDataset(c.Request.Context(), c.Param("key"), patch, ifRev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) deleteDataset(c *gin.Context) {
	if err := s.cat.DeleteDataset(c.Request.Context(), c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listData(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := s.cat.ListData(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getData(c *gin.Context) {
	res, err := s.cat.GetData(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) createData(c *gin.Context) {
	var d record.Data
	if !bindBody(c, &d) {
		return
	}
	res, err := s.cat.CreateData(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) replaceData(c *gin.Context) {
	var d record.Data
	if !bindBody(c, &d) {
		return
	}
	ifRev := ifRevision(c, d.Rev)
	res, err := s.cat.ReplaceData(c.Request.Context(), c.Param("key"), d, ifRev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) patchData(c *gin.Context) {
	patch := make(map[string]any)
	if !bindBody(c, &patch) {
		return
	}
	ifRev := patchRevision(c, patch)
	res, err := s.cat.PatchData(c.Request.Context(), c.Param("key"), patch, ifRev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) deleteData(c *gin.Context) {
	if err := s.cat.DeleteData(c.Request.Context(), c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
