package models

// User is an operator account. The password column stores the peppered
// bcrypt digest, never the plaintext secret.
type User struct {
	ID       int32  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name     string `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Email    string `gorm:"column:email;not null" json:"email"`
	Password string `gorm:"column:password;not null" json:"-"`
}
