package cached

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cache"
)

const salaryConfigNamespace = "salary_config"

type salaryConfigRepository struct {
	next  salary.SalaryConfigRepository
	cache cache.Namespace
}

// NewSalaryConfigRepository caches salary configs keyed by user id.
func NewSalaryConfigRepository(next salary.SalaryConfigRepository, store cache.Store) salary.SalaryConfigRepository {
	return &salaryConfigRepository{
		next:  next,
		cache: cache.NewNamespace(store, salaryConfigNamespace),
	}
}

func (r *salaryConfigRepository) Get(ctx context.Context, userID string) (salary.SalaryConfig, error) {
	if v, ok := r.cache.Get(userID); ok {
		if cfg, ok := v.(salary.SalaryConfig); ok {
			return cfg, nil
		}
	}

	cfg, err := r.next.Get(ctx, userID)
	if err != nil {
		return salary.SalaryConfig{}, err
	}
	r.cache.Set(userID, cfg)
	return cfg, nil
}

func (r *salaryConfigRepository) Upsert(ctx context.Context, cfg salary.SalaryConfig) (salary.SalaryConfig, error) {
	saved, err := r.next.Upsert(ctx, cfg)
	r.cache.Invalidate(cfg.UserID)
	if err != nil {
		return salary.SalaryConfig{}, err
	}
	return saved, nil
}
