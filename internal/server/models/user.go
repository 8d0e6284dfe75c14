package models

import "time"

// UserRole identifies what a signed-in user may do.
type UserRole string

const (
	RoleMedico      UserRole = "medico"
	RoleCoordenador UserRole = "coordenador"
	RoleAdmin       UserRole = "admin"
)

// UserStatus is the approval state of an account. New registrations start
// pending; coordinators move them to aprovado or rejeitado. There is no
// transition back to pending.
type UserStatus string

const (
	StatusPendingApproval UserStatus = "pendente_aprovacao"
	StatusApproved        UserStatus = "aprovado"
	StatusRejected        UserStatus = "rejeitado"
)

// AuthUser is the credential record behind login and account approval.
// EmailLower is the unique lookup key; Email preserves what the user typed.
type AuthUser struct {
	ID           string
	Email        string
	EmailLower   string
	Nome         string
	Role         UserRole
	Status       UserStatus
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ApprovedAt   *time.Time
	ApprovedBy   string
}

// PendingUserSummary is the public-safe projection of a pending account
// shown on the approval screen. No password hash.
type PendingUserSummary struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Nome      string     `json:"nome"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SeedUser describes one account loaded by the composition root at startup.
// Ativo maps to aprovado; everything else becomes rejeitado, mirroring how
// the legacy seed list was interpreted.
type SeedUser struct {
	Email string   `json:"email"`
	Nome  string   `json:"nome"`
	Role  UserRole `json:"role"`
	// Plaintext only lives in the seed file; it is hashed before storage.
	Password string `json:"password"`
	Ativo    bool   `json:"ativo"`
}

// Summary returns the public-safe projection of u.
func (u *AuthUser) Summary() PendingUserSummary {
	return PendingUserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Nome:      u.Nome,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
