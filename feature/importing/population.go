package importing

import (
	"context"
	"fmt"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient"
	"formulary-manager/feature/ingredient/models"

	"golang.org/x/sync/singleflight"
)

// populationLoader fetches the canonical population for analysis calls.
//
// Concurrent analyses collapse onto a single in-flight ListAll via
// singleflight; nothing is retained between calls, so no analysis can ever
// observe a stale population snapshot.
type populationLoader struct {
	store ingredient.Store
	sf    singleflight.Group
}

func newPopulationLoader(store ingredient.Store) *populationLoader {
	return &populationLoader{store: store}
}

// load returns the full canonical population or a FetchError. The result of
// a shared fetch is safe to hand to multiple callers: the repository returns
// independent copies per record.
func (l *populationLoader) load(ctx context.Context) ([]*models.CanonicalRecord, error) {
	result, err, _ := l.sf.Do("population", func() (any, error) {
		return l.store.ListAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	return result.([]*models.CanonicalRecord), nil
}
