package model

// Role は管理コンソールのオペレーター権限を表す。
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// User はログイン中のオペレーターを表す。
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Role        Role     `json:"role"`
	IsActive    bool     `json:"isActive"`
	Permissions []string `json:"permissions,omitempty"`
	LastLogin   string   `json:"lastLogin,omitempty"`
}

// LoginRequest はログインAPIのリクエストボディ。
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse はログインAPIのレスポンス。
type LoginResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Credential はリクエストに付与するBearerトークンと任意のリフレッシュトークン。
// プロセス内で同時に有効なのは1つだけ。
type Credential struct {
	Token        string
	RefreshToken string
}

// IsZero はトークンが未設定かどうかを返す。
func (c Credential) IsZero() bool {
	return c.Token == ""
}
