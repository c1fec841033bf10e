package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the side-table authorization model: admins see every encounter
// record, profesores see only the records they created. Catalog reads are
// open to any authenticated identity.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProfesor Role = "profesor"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProfesor:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Name         string `gorm:"column:nombre;type:varchar(200);not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         Role   `gorm:"column:rol;type:varchar(30);not null;default:'profesor';index"`

	// For profesor accounts, links to the catalog entry they report under.
	ProfessionalID *uuid.UUID `gorm:"column:profesional_id;type:uuid;index"`

	IsActive         bool       `gorm:"column:activo;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "usuarios"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionImport AuditAction = "import"
	ActionExport AuditAction = "export"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	UserEmail string `gorm:"column:user_email;type:varchar(255);not null;index"`
	UserRole  Role   `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	Detail string `gorm:"column:detail;type:text"`
}

func (AuditLog) TableName() string {
	return "auditoria"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID         uuid.UUID  `json:"sub"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	ProfessionalID *uuid.UUID `json:"profesional_id,omitempty"`
}
