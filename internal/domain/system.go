package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Staff roles. Role membership gates every mutating operation.
const (
	RoleAdmin       = "Admin"
	RoleNetworkTeam = "Network Team"
	RoleNocTeam     = "NOC Team"
)

// Roles lists all assignable roles for user forms.
var Roles = []string{RoleAdmin, RoleNetworkTeam, RoleNocTeam}

// SysUser is a portal account. Password holds a bcrypt hash, never plaintext.
type SysUser struct {
	ID        int64     `json:"id,string" form:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" form:"username" gorm:"size:120;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:200;not null"` // bcrypt hash, never expose
	Role      string    `json:"role" form:"role" gorm:"size:50;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

// SetPassword replaces the stored hash with a bcrypt hash of plain.
func (u *SysUser) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *SysUser) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
