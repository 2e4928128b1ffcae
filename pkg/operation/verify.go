package operation

import (
	"context"
	"runtime"

	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ✅ Verify evaluates items against every document concurrently. Reports come
// back in the order of identities. limit <= 0 uses GOMAXPROCS workers.
func Verify(ctx context.Context, src Source, items []checklist.Item, identities []string, limit int) ([]*report.RunReport, error) {
	if src == nil {
		return nil, errors.Errorf("source is required")
	}
	if err := checklist.Validate(items); err != nil {
		return nil, errors.Errorf("validating checklist: %w", err)
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	logger := zerolog.Ctx(ctx)
	reports := make([]*report.RunReport, len(identities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, identity := range identities {
		g.Go(func() error {
			doc, err := src.Read(gctx, identity)
			if err != nil {
				return errors.Errorf("reading %s: %w", identity, err)
			}

			results := checklist.Evaluate(doc, items)
			reports[i] = report.Build(report.Params{
				Document: identity,
				Mode:     report.ModeVerify,
				Checks:   results,
			})
			logger.Debug().Str("document", identity).Bool("passed", reports[i].AllPassed()).Msg("verified document")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
