// Package usecase assembles glued MITgcm output into an analysis-ready dataset and its
// staggered grid.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/ocean-grid/internal/adapter/store"
	"go.ngs.io/ocean-grid/internal/config"
	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
	"go.ngs.io/ocean-grid/internal/xgrid"
)

// AssembleRequest selects the optional parts of an assembly.
type AssembleRequest struct {
	Cropped   bool // Overlay the cropped budget collection.
	DispTable bool // Render the variable catalog.
	PlotMap   bool // Render the domain map.
}

// AssembleResult is the assembled dataset and the grid derived from it.
type AssembleResult struct {
	Dataset *dataset.Dataset
	Grid    *xgrid.Grid
	Elapsed time.Duration
}

// TableRenderer displays the variable catalog of an assembled dataset.
type TableRenderer interface {
	RenderTable(entries []domain.CatalogEntry) error
}

// MapRenderer displays the model domain of an assembled dataset.
type MapRenderer interface {
	RenderMap(ds *dataset.Dataset) error
}

// Option configures an AssembleUseCase.
type Option func(*AssembleUseCase)

// WithTableRenderer enables DispTable requests.
func WithTableRenderer(r TableRenderer) Option {
	return func(uc *AssembleUseCase) { uc.table = r }
}

// WithMapRenderer enables PlotMap requests.
func WithMapRenderer(r MapRenderer) Option {
	return func(uc *AssembleUseCase) { uc.mapper = r }
}

// WithTimeMidpoints adds the time_midp axis to every assembled dataset.
func WithTimeMidpoints(enabled bool) Option {
	return func(uc *AssembleUseCase) { uc.timeMidpoints = enabled }
}

// WithGridOptions sets the boundary handling of the derived grid.
func WithGridOptions(opts xgrid.Options) Option {
	return func(uc *AssembleUseCase) { uc.gridOpts = opts }
}

// AssembleUseCase orchestrates source acquisition and the assembly stages.
// It holds no per-invocation state and is safe for concurrent use.
type AssembleUseCase struct {
	loader        store.SourceLoader
	sources       config.Sources
	logger        *zap.Logger
	table         TableRenderer
	mapper        MapRenderer
	timeMidpoints bool
	gridOpts      xgrid.Options
}

// NewAssembleUseCase creates a new assembly use case.
func NewAssembleUseCase(loader store.SourceLoader, sources config.Sources, logger *zap.Logger, opts ...Option) *AssembleUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &AssembleUseCase{
		loader:  loader,
		sources: sources,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	// The regional domain is never periodic.
	uc.gridOpts.Periodic = false
	return uc
}

// Stages returns the ordered stages applied after the sources are merged.
func (uc *AssembleUseCase) Stages() []Stage {
	stages := []Stage{
		{Name: StageReconcile, Run: reconcileDimensions},
		{Name: StageRepair, Run: repairCoordinates},
	}
	if uc.timeMidpoints {
		stages = append(stages, Stage{Name: StageTimeMidpoints, Run: addTimeMidpoints})
	}
	return append(stages, Stage{Name: StageTagAxes, Run: tagAxes})
}

// Execute assembles the dataset and its grid, then renders the requested reports.
func (uc *AssembleUseCase) Execute(ctx context.Context, req AssembleRequest) (*AssembleResult, error) {
	// Check that requested reports can be produced before any I/O.
	if req.DispTable && uc.table == nil {
		return nil, fmt.Errorf("%q requested but no table renderer is configured: %w", FlagDispTable, domain.ErrInvalidArgument)
	}
	if req.PlotMap && uc.mapper == nil {
		return nil, fmt.Errorf("%q requested but no map renderer is configured: %w", FlagPlotMap, domain.ErrInvalidArgument)
	}
	if req.Cropped && uc.sources.CroppedGlob == "" {
		return nil, fmt.Errorf("%q requested but no cropped collection is configured: %w", FlagCropped, domain.ErrSourceUnavailable)
	}

	start := time.Now()
	uc.logger.Info("opening the whole dataset", zap.Bool("cropped", req.Cropped))

	// Import grid and fields separately, then merge.
	grid, err := uc.loader.OpenGrid(ctx, uc.sources.GridPath, domain.GridDropVariables)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid: %w", err)
	}
	fields, err := uc.loader.OpenFields(ctx, uc.sources.FieldsGlob, domain.SourceTimeDim, domain.FieldDropVariables)
	if err != nil {
		return nil, fmt.Errorf("failed to open fields: %w", err)
	}
	ds, err := mergeSources(grid, fields)
	if err != nil {
		return nil, err
	}

	if req.Cropped {
		crop, err := uc.loader.OpenFields(ctx, uc.sources.CroppedGlob, domain.SourceTimeDim, domain.FieldDropVariables)
		if err != nil {
			return nil, fmt.Errorf("failed to open cropped fields: %w", err)
		}
		if ds, err = cropToSubdomain(ds, crop); err != nil {
			return nil, err
		}
	}

	if ds, err = runStages(ds, uc.Stages(), uc.logger); err != nil {
		return nil, err
	}
	g, err := xgrid.New(ds, uc.gridOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}

	elapsed := time.Since(start)
	uc.logger.Info("done in " + formatClock(elapsed))

	if req.DispTable {
		if err := uc.table.RenderTable(domain.Catalog(ds)); err != nil {
			return nil, fmt.Errorf("failed to render table: %w", err)
		}
	}
	if req.PlotMap {
		if err := uc.mapper.RenderMap(ds); err != nil {
			return nil, fmt.Errorf("failed to render map: %w", err)
		}
	}

	return &AssembleResult{Dataset: ds, Grid: g, Elapsed: elapsed}, nil
}

// formatClock renders d as HH:MM:SS.
func formatClock(d time.Duration) string {
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}
