package storage

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/imamik/kbstack/internal/provisioning"
)

// UploadDocuments uploads every matching file under the data directory,
// keyed by its base name.
func (p *Provisioner) UploadDocuments(ctx *provisioning.Context) error {
	if err := ctx.State.Require(provisioning.KeyBucketName); err != nil {
		return err
	}
	bucket := ctx.State.Get(provisioning.KeyBucketName)

	docs, err := provisioning.FindDocuments(ctx.Config.DataDir, ctx.Config.FilePattern)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no files in %s match %s", provisioning.ErrValidation, ctx.Config.DataDir, ctx.Config.FilePattern)
	}

	ctx.Observer.Printf("[Storage] Uploading %d documents to %s...", len(docs), bucket)

	limit := ctx.Config.UploadConcurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var done atomic.Int32
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Clients.Storage.UploadFile(gctx, bucket, doc.Key, doc.Path); err != nil {
				return fmt.Errorf("failed to upload %s: %w", doc.Path, err)
			}
			ctx.Observer.Progress(phase, int(done.Add(1)), len(docs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ctx.Observer.Printf("[Storage] Uploaded %d documents", len(docs))
	return nil
}
