package http

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/ocean-grid/internal/adapter/interp"
	"go.ngs.io/ocean-grid/internal/adapter/render/mapplot"
	"go.ngs.io/ocean-grid/internal/domain"
	"go.ngs.io/ocean-grid/internal/usecase"
)

// Handler serves assembled datasets over HTTP.
type Handler struct {
	cache  *resultCache
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler keeping up to cacheSize assemblies.
func NewHandler(assembler Assembler, cacheSize int, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := newResultCache(assembler, cacheSize, logger)
	if err != nil {
		return nil, err
	}
	return &Handler{cache: cache, logger: logger}, nil
}

// DatasetResponse summarises an assembled dataset.
type DatasetResponse struct {
	Cropped    bool           `json:"cropped"`
	Dims       map[string]int `json:"dims"`
	Variables  []string       `json:"variables"`
	Attrs      map[string]any `json:"attrs"`
	ElapsedSec float64        `json:"elapsed_sec"`
}

// AxisResponse lists the dimension at each position of one axis.
type AxisResponse struct {
	Name      string            `json:"name"`
	Positions map[string]string `json:"positions"`
}

// SampleResponse is a bilinear sample of one field. Value is null over land.
type SampleResponse struct {
	Name  string         `json:"name"`
	Lon   float64        `json:"lon"`
	Lat   float64        `json:"lat"`
	At    map[string]int `json:"at,omitempty"`
	Value *float64       `json:"value"`
}

// assembled parses the cropped query flag and fetches the matching assembly.
func (h *Handler) assembled(c *gin.Context) (*usecase.AssembleResult, bool, bool) {
	cropped := false
	if raw, ok := c.GetQuery(usecase.FlagCropped); ok {
		var err error
		if cropped, err = usecase.ParseFlag(usecase.FlagCropped, raw); err != nil {
			h.writeError(c, err)
			return nil, false, false
		}
	}
	res, err := h.cache.get(c.Request.Context(), cropped)
	if err != nil {
		h.writeError(c, err)
		return nil, false, false
	}
	return res, cropped, true
}

// GetDataset handles GET /v1/dataset.
func (h *Handler) GetDataset(c *gin.Context) {
	res, cropped, ok := h.assembled(c)
	if !ok {
		return
	}
	ds := res.Dataset
	c.JSON(http.StatusOK, DatasetResponse{
		Cropped:    cropped,
		Dims:       ds.Sizes(),
		Variables:  ds.Names(),
		Attrs:      ds.Attrs(),
		ElapsedSec: res.Elapsed.Seconds(),
	})
}

// GetVariables handles GET /v1/variables.
func (h *Handler) GetVariables(c *gin.Context) {
	res, _, ok := h.assembled(c)
	if !ok {
		return
	}
	entries := domain.Catalog(res.Dataset)
	c.JSON(http.StatusOK, gin.H{
		"variables": entries,
		"count":     len(entries),
	})
}

// GetGrid handles GET /v1/grid.
func (h *Handler) GetGrid(c *gin.Context) {
	res, _, ok := h.assembled(c)
	if !ok {
		return
	}
	g := res.Grid
	axes := make([]AxisResponse, 0, len(g.Axes()))
	for _, name := range g.Axes() {
		axis, _ := g.Axis(name)
		positions := make(map[string]string)
		for _, p := range axis.Positions() {
			positions[p.String()], _ = axis.Dim(p)
		}
		axes = append(axes, AxisResponse{Name: name, Positions: positions})
	}
	c.JSON(http.StatusOK, gin.H{
		"axes":     axes,
		"periodic": g.Periodic(),
		"summary":  g.String(),
	})
}

// GetSample handles GET /v1/fields/:name/sample?lon=..&lat=..[&<dim>=<position>].
func (h *Handler) GetSample(c *gin.Context) {
	name := c.Param("name")
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	at := make(map[string]int)
	for key, values := range c.Request.URL.Query() {
		if key == "lon" || key == "lat" || key == usecase.FlagCropped {
			continue
		}
		p, err := strconv.Atoi(values[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid position for %s: %v", key, err)})
			return
		}
		at[key] = p
	}

	res, _, ok := h.assembled(c)
	if !ok {
		return
	}
	v, err := interp.Sample(res.Dataset, name, at, lon, lat)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := SampleResponse{Name: name, Lon: lon, Lat: lat, At: at}
	if !math.IsNaN(v) {
		resp.Value = &v
	}
	c.JSON(http.StatusOK, resp)
}

// GetMap handles GET /v1/map.png.
func (h *Handler) GetMap(c *gin.Context) {
	res, _, ok := h.assembled(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := mapplot.NewRenderer(&buf, 6*vg.Inch, 4.5*vg.Inch).RenderMap(res.Dataset); err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
