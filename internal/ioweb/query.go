package ioweb

import (
	"net/http"
	"strings"

	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/gin-gonic/gin"
)

// searchArgs are query parameters of search routes. Filter values are
// sent as a JSON object in the body.
type searchArgs struct {
	pageArgs
	Op   string `form:"op"`
	Sort string `form:"sort"`
	Desc bool   `form:"desc"`
}

// sort converts a comma-separated list of fields.
func (a searchArgs) sort() store.Sort {
	var fields []string
	for _, f := range strings.Split(a.Sort, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return store.Sort{Fields: fields, Desc: a.Desc}
}

func bindSort(c *gin.Context) (store.Page, store.Sort, bool) {
	var args searchArgs
	if err := c.ShouldBindQuery(&args); err != nil {
		writeError(c, BadRequestError(err))
		return store.Page{}, store.Sort{}, false
	}
	return args.page(), args.sort(), true
}

func bindSearch(c *gin.Context) (catalog.Search, bool) {
	var args searchArgs
	if err := c.ShouldBindQuery(&args); err != nil {
		writeError(c, BadRequestError(err))
		return catalog.Search{}, false
	}
	op, err := filter.ParseOp(args.Op)
	if err != nil {
		writeError(c, err)
		return catalog.Search{}, false
	}

	var params map[string]any
	if !bindBody(c, &params) {
		return catalog.Search{}, false
	}
	return catalog.Search{
		Params: params,
		Op:     op,
		Page:   args.page(),
		Sort:   args.sort(),
	}, true
}

// respond writes a result or an error.
func respond[T any](c *gin.Context, res T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) queryDatasets(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryDatasets(c.Request.Context(), q)
		respond(c, res, err)
	}
}

func (s *Server) queryDatasetKeys(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryDatasetKeys(c.Request.Context(), q)
		respond(c, res, err)
	}
}

func (s *Server) queryData(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryData(c.Request.Context(), q)
		respond(c, res, err)
	}
}

func (s *Server) queryDataKeys(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryDataKeys(c.Request.Context(), q)
		respond(c, res, err)
	}
}

func (s *Server) queryDatasetData(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryDatasetData(c.Request.Context(), c.Param("key"), q)
		respond(c, res, err)
	}
}

func (s *Server) queryDatasetDataKeys(c *gin.Context) {
	if q, ok := bindSearch(c); ok {
		res, err := s.cat.QueryDatasetDataKeys(c.Request.Context(), c.Param("key"), q)
		respond(c, res, err)
	}
}

func (s *Server) dataByDataset(c *gin.Context) {
	page, sort, ok := bindSort(c)
	if !ok {
		return
	}
	res, err := s.cat.DataByDataset(c.Request.Context(), c.Param("key"), page, sort)
	respond(c, res, err)
}

func (s *Server) qualify(c *gin.Context) {
	res, err := s.cat.Qualify(c.Request.Context(), c.Param("key"))
	respond(c, res, err)
}

type statsArgs struct {
	Pivot string `form:"pivot" binding:"required"`
	Stat  string `form:"stat" binding:"required"`
}

func (s *Server) statistics(c *gin.Context) {
	var args statsArgs
	if err := c.ShouldBindQuery(&args); err != nil {
		writeError(c, BadRequestError(err))
		return
	}
	res, err := s.cat.Statistics(c.Request.Context(), c.Param("key"), args.Pivot, args.Stat)
	respond(c, res, err)
}

// refresh recomputes the datasets listed in the body, or all datasets
// if the "all" parameter is true. If no dataset could be refreshed,
// the report is sent as details of the error.
func (s *Server) refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var keys []string
	if c.Query("all") == "true" {
		var err error
		if keys, err = s.cat.DatasetKeys(ctx); err != nil {
			writeError(c, err)
			return
		}
	} else if !bindBody(c, &keys) {
		return
	}

	res, err := s.cat.Refresh(ctx, keys)
	if err != nil {
		writeErrorDetails(c, err, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
