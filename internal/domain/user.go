package domain

// User Model
type User struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"` // Sequential identifier, starts at 1
	Name        string `gorm:"index" json:"name"`                  // Login name, not unique
	Email       string `gorm:"index" json:"email"`                 // Unique at registration only
	Contact     string `json:"contact"`                            // Contact number
	Password    string `gorm:"not null" json:"password"`           // Bcrypt hash of the password
	ProfilePath string `json:"profile_path"`                       // Filesystem path of the uploaded profile image
}
