package repository

import (
	"context"

	"boxoffice/internal/database"
	"boxoffice/internal/models"
)

type DonationRepository struct {
	db *database.DB
}

func NewDonationRepository(db *database.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (donor_name, donor_email, donor_phone, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		donation.DonorName,
		donation.DonorEmail,
		donation.DonorPhone,
		donation.Amount,
		donation.TransactionID,
	).Scan(&donation.ID, &donation.CreatedAt)
}
