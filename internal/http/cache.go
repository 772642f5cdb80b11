package http

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go.ngs.io/ocean-grid/internal/usecase"
)

// Assembler produces assembled datasets.
type Assembler interface {
	Execute(ctx context.Context, req usecase.AssembleRequest) (*usecase.AssembleResult, error)
}

// resultCache keeps recent assemblies per variant. Concurrent misses for the same
// variant share one assembly.
type resultCache struct {
	assembler Assembler
	results   *lru.Cache[bool, *usecase.AssembleResult]
	group     singleflight.Group
	logger    *zap.Logger
}

func newResultCache(assembler Assembler, size int, logger *zap.Logger) (*resultCache, error) {
	results, err := lru.New[bool, *usecase.AssembleResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &resultCache{assembler: assembler, results: results, logger: logger}, nil
}

// get returns the assembly for the cropped or full variant.
func (rc *resultCache) get(ctx context.Context, cropped bool) (*usecase.AssembleResult, error) {
	if res, ok := rc.results.Get(cropped); ok {
		return res, nil
	}
	v, err, shared := rc.group.Do(strconv.FormatBool(cropped), func() (any, error) {
		if res, ok := rc.results.Get(cropped); ok {
			return res, nil
		}
		// The assembly outlives the request that started it.
		res, err := rc.assembler.Execute(context.WithoutCancel(ctx), usecase.AssembleRequest{Cropped: cropped})
		if err != nil {
			return nil, err
		}
		rc.results.Add(cropped, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	rc.logger.Debug("assembled dataset", zap.Bool("cropped", cropped), zap.Bool("shared", shared))
	return v.(*usecase.AssembleResult), nil
}
