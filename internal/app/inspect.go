package app

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/loadgate"
)

// inspectConcurrency bounds parallel loads during Inspect.
const inspectConcurrency = 4

// ImageReport is the load outcome of one image node.
type ImageReport struct {
	Key     document.NodeKey
	Src     string
	Status  loadgate.Status
	Format  string
	Width   int
	Height  int
	Size    int64
	Elapsed time.Duration
	Err     error
}

// Inspect loads every image of tree through gate and reports each outcome
// in document order. The error combines every failed load.
func Inspect(ctx context.Context, tree *document.Tree, gate *loadgate.Gate) ([]ImageReport, error) {
	images := tree.Images()
	reports := make([]ImageReport, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectConcurrency)
	for i, img := range images {
		reports[i] = ImageReport{Key: img.Key(), Src: img.Src(), Status: loadgate.StatusPending}
		g.Go(func() error {
			start := time.Now()
			res, err := gate.Wait(ctx, img.Src())
			rep := &reports[i]
			rep.Elapsed = time.Since(start)
			rep.Status = res.Status
			rep.Err = err
			if res.Image != nil {
				rep.Format = res.Image.Format
				rep.Width = res.Image.Width
				rep.Height = res.Image.Height
				rep.Size = res.Image.Size
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, rep := range reports {
		if rep.Err != nil {
			errs = multierr.Append(errs, NewOperationError("load", rep.Src, rep.Err))
		}
	}
	return reports, errs
}
