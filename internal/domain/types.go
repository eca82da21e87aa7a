package domain

import "railway/internal/domain/models"

// Principal is the authenticated caller resolved by the auth middleware.
type Principal struct {
	Kind  models.OwnerKind `json:"kind"`
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
}

// Owner is the ticket owner the principal acts as.
func (p Principal) Owner() models.Owner {
	return models.Owner{Kind: p.Kind, ID: p.ID}
}
