package account

import "time"

type Account struct {
	AccountID           string    `json:"accountId" db:"account_id"`
	Name                string    `json:"name" db:"name"`
	PublicKey           string    `json:"publicKey" db:"public_key"`
	EncryptedPrivateKey string    `json:"-" db:"encrypted_private_key"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}
