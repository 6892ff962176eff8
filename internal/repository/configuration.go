package repository

import (
	"context"
	"database/sql"
	"errors"

	"payment-collect-visa/internal/domain"
)

type ConfigurationRepository struct {
	db *sql.DB
}

func NewConfigurationRepository(db *sql.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Get returns the collect configuration of a company. A company without a
// configuration row gets an empty configuration, not an error.
func (r *ConfigurationRepository) Get(ctx context.Context, companyID int64) (domain.Configuration, error) {
	query := `
		SELECT co.id, co.name, cfg.visa_company_code, cfg.payment_method_visa_id
		FROM companies co
		LEFT JOIN collect_configurations cfg ON cfg.company_id = co.id
		WHERE co.id = $1
	`

	var (
		cfg    domain.Configuration
		name   sql.NullString
		code   sql.NullString
		method sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, companyID).Scan(&cfg.CompanyID, &name, &code, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Configuration{CompanyID: companyID}, nil
	}
	if err != nil {
		return domain.Configuration{}, err
	}

	cfg.CompanyName = name.String
	cfg.CompanyCode = code.String
	if method.Valid {
		m := method.Int64
		cfg.PaymentMethodID = &m
	}
	return cfg, nil
}
