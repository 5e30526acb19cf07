package repository

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the database.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null;size:255"`
	FullName       string    `gorm:"not null;size:255"`
	Phone          string    `gorm:"size:32"`
	HashedPassword string    `gorm:"not null"`
	KYCStatus      string    `gorm:"size:16;not null;default:'pending'"`
	Role           string    `gorm:"size:16;not null;default:'user'"`
	IsActive       bool      `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PixAccount represents a PIX account record. Balance is stored in centavos.
type PixAccount struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PixKey      string    `gorm:"uniqueIndex;not null;size:255"`
	PixKeyType  string    `gorm:"size:16;not null"`
	AccountType string    `gorm:"size:16;not null;default:'checking'"`
	Balance     int64     `gorm:"not null;default:0;check:chk_pix_accounts_balance,balance >= 0"`
	IsActive    bool      `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName specifies the table name for the PixAccount model.
func (PixAccount) TableName() string {
	return "pix_accounts"
}

// PixTransaction represents an immutable ledger entry.
type PixTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FromUserID      *uuid.UUID `gorm:"type:uuid;index"`
	ToUserID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	FromPixKey      *string    `gorm:"size:255"`
	ToPixKey        string     `gorm:"size:255;not null"`
	Amount          int64      `gorm:"not null"`
	Description     *string
	TransactionType string     `gorm:"size:16;not null"`
	Status          string     `gorm:"size:16;not null"`
	CreatedAt       time.Time  `gorm:"index"`
	CompletedAt     *time.Time
	ToUser          *User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the PixTransaction model.
func (PixTransaction) TableName() string {
	return "pix_transactions"
}

// VirtualCard represents a card record. Limits and counters are in centavos.
type VirtualCard struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	User           *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CardNumber     string    `gorm:"uniqueIndex;not null;size:19"`
	CardHolderName string    `gorm:"not null;size:255"`
	CVV            string    `gorm:"column:cvv;not null;size:4"`
	ExpiryDate     string    `gorm:"not null;size:5"`
	Status         string    `gorm:"size:16;not null"`
	DailyLimit     int64     `gorm:"not null"`
	MonthlyLimit   int64     `gorm:"not null"`
	DailySpent     int64     `gorm:"not null;default:0"`
	MonthlySpent   int64     `gorm:"not null;default:0"`
	DailyResetAt   time.Time
	MonthlyResetAt time.Time
	CreatedAt      time.Time `gorm:"index"`
	BlockedAt      *time.Time
}

// TableName specifies the table name for the VirtualCard model.
func (VirtualCard) TableName() string {
	return "virtual_cards"
}

// CardTransaction represents an immutable card entry. A purchase can be
// refunded at most once, enforced by the unique refund_of index.
type CardTransaction struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey"`
	CardID          uuid.UUID    `gorm:"type:uuid;index;not null"`
	Card            *VirtualCard `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	MerchantName    string       `gorm:"not null;size:255"`
	Amount          int64        `gorm:"not null"`
	Currency        string       `gorm:"type:varchar(3);not null;default:'BRL'"`
	Status          string       `gorm:"size:16;not null"`
	TransactionType string       `gorm:"size:16;not null"`
	RefundOf        *uuid.UUID   `gorm:"type:uuid;uniqueIndex"`
	CreatedAt       time.Time    `gorm:"index"`
}

// TableName specifies the table name for the CardTransaction model.
func (CardTransaction) TableName() string {
	return "card_transactions"
}

// KYCDocument represents a KYC submission.
type KYCDocument struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	User           *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DocumentType   string    `gorm:"size:16;not null"`
	DocumentNumber string    `gorm:"size:64;not null"`
	DocumentImage  string    `gorm:"type:text"`
	SelfieImage    string    `gorm:"type:text"`
	Status         string    `gorm:"size:16;index;not null"`
	SubmittedAt    time.Time `gorm:"index"`
	ReviewedAt     *time.Time
	ReviewerID     *uuid.UUID `gorm:"type:uuid"`
	ReviewerNotes  *string
}

// TableName specifies the table name for the KYCDocument model.
func (KYCDocument) TableName() string {
	return "kyc_documents"
}

// CardSequence is a named counter used to issue card numbers.
type CardSequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName specifies the table name for the CardSequence model.
func (CardSequence) TableName() string {
	return "card_sequences"
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&PixAccount{},
		&PixTransaction{},
		&VirtualCard{},
		&CardTransaction{},
		&KYCDocument{},
		&CardSequence{},
	}
}
