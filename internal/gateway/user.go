package gateway

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

// User is an account as shown in the admin list.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nama"`
	Email     string    `json:"email"`
	Phone     string    `json:"no_telepon"`
	Role      string    `json:"role"`
	Status    Status    `json:"status"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFields are the editable user fields. Nil means "not provided".
type UserFields struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *string
	Password *string
	Status   *Status
	// Avatar is a data URL to upload, a URL to keep, or "" to remove the
	// current avatar.
	Avatar *string
}

// Validate runs the form-level checks done before a create (full) or an
// update (only provided fields).
func (f UserFields) Validate(create bool) error {
	if create || f.Name != nil {
		if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
			return apierror.ValidationError{Field: "nama", Msg: "Nama wajib diisi"}
		}
	}
	if create || f.Email != nil {
		if f.Email == nil || strings.TrimSpace(*f.Email) == "" {
			return apierror.ValidationError{Field: "email", Msg: "Email wajib diisi"}
		}
		if _, err := mail.ParseAddress(*f.Email); err != nil || strings.Contains(*f.Email, " ") {
			return apierror.ValidationError{Field: "email", Msg: "Format email tidak valid"}
		}
	}
	if create && (f.Phone == nil || strings.TrimSpace(*f.Phone) == "") {
		return apierror.ValidationError{Field: "no_telepon", Msg: "Nomor telepon wajib diisi"}
	}
	if f.Status != nil && !f.Status.Toggleable() {
		return apierror.ValidationError{Field: "status", Msg: apierror.StatusError{Value: string(*f.Status)}.Error()}
	}
	return nil
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultUserPassword is sent when a user is created without a password.
const DefaultUserPassword = "password123"

// UserMessages are the user strings shown to the user.
var UserMessages = Messages{
	NoTokenList:     apierror.MsgNoTokenList,
	NoTokenMutation: apierror.MsgNoTokenList,
	ListFailed:      "Gagal memuat users",
	GetFailed:       "Gagal memuat detail user",
	CreateFailed:    "Gagal menambah user",
	UpdateFailed:    "Gagal mengupdate user",
	StatusFailed:    "Gagal mengubah status",
	DeleteFailed:    "Gagal menghapus user",
	Created:         "User berhasil ditambahkan",
	Updated:         "User berhasil diupdate",
	StatusUpdated:   "Status user diperbarui",
	Deleted:         "User berhasil dihapus",
	Entity:          "User",
	Unexpected:      "Terjadi kesalahan saat memuat data",
}

// UserFilters are the user list filters.
var UserFilters = []FilterParam{
	{Name: "status", Param: "status", Sentinel: AllStatuses},
}

// UserSchema maps users onto the /users endpoints. The list is always
// sorted by name; only the order is user controlled.
func UserSchema(defaultPassword string) Schema[User, UserFields] {
	if defaultPassword == "" {
		defaultPassword = DefaultUserPassword
	}
	return Schema[User, UserFields]{
		Resource:       "users",
		SortFields:     map[string]string{SortName: "nama"},
		DefaultSort:    SortName,
		Filters:        UserFilters,
		StatusField:    "status_user",
		StatusFallback: true,
		UploadPrefix:   "user",
		UploadLabel:    "avatar",
		Placeholder:    upload.AvatarPlaceholder,
		Decode:         DecodeUser,
		ImageInput:     func(f UserFields) *string { return f.Avatar },
		EncodeCreate: func(f UserFields, img Image) map[string]any {
			return encodeUserCreate(f, img, defaultPassword)
		},
		EncodeUpdate: encodeUserUpdate,
		Messages:     UserMessages,
	}
}

// DecodeUser maps a backend user row.
func DecodeUser(r Row) User {
	raw, _ := r.Raw("photo_profile")
	role := r.String("role")
	if role == "" {
		role = RoleUser
	}
	return User{
		ID:        r.Int("id"),
		Name:      r.String("nama", "name"),
		Email:     r.String("email"),
		Phone:     r.String("no_telepon", "noTelp"),
		Role:      role,
		Status:    Status(r.String("status_user", "status")),
		Avatar:    upload.NormalizeImageURL(raw, upload.AvatarPlaceholder),
		CreatedAt: r.Time("created_at"),
	}
}

func encodeUserCreate(f UserFields, img Image, defaultPassword string) map[string]any {
	role := RoleUser
	if f.Role != nil && *f.Role != "" {
		role = *f.Role
	}
	password := defaultPassword
	if f.Password != nil && *f.Password != "" {
		password = *f.Password
	}
	status := StatusInactive
	if f.Status != nil && *f.Status != "" {
		status = *f.Status
	}
	var avatar any
	if img.Set && img.URL != nil {
		avatar = *img.URL
	}
	return map[string]any{
		"nama":          deref(f.Name),
		"email":         deref(f.Email),
		"no_telepon":    deref(f.Phone),
		"role":          role,
		"password":      password,
		"status_user":   string(status),
		"photo_profile": avatar,
	}
}

func encodeUserUpdate(f UserFields, img Image) map[string]any {
	payload := map[string]any{}
	if f.Name != nil {
		payload["nama"] = *f.Name
	}
	if f.Email != nil {
		payload["email"] = *f.Email
	}
	if f.Phone != nil {
		payload["no_telepon"] = *f.Phone
	}
	if f.Status != nil {
		status := *f.Status
		if status == "" {
			status = StatusInactive
		}
		payload["status_user"] = string(status)
	}
	if f.Role != nil {
		payload["role"] = *f.Role
	}
	if f.Password != nil && *f.Password != "" {
		payload["password"] = *f.Password
	}
	if img.Set {
		if img.URL == nil {
			payload["photo_profile"] = nil
		} else {
			payload["photo_profile"] = *img.URL
		}
	}
	return payload
}

// UserAdapter is the MockAdapter for users.
type UserAdapter struct {
	Now func() time.Time
}

func (UserAdapter) ID(u User) int64 { return u.ID }

func (UserAdapter) Match(u User, q listquery.Query) bool {
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" &&
		!strings.Contains(strings.ToLower(u.Name), s) &&
		!strings.Contains(strings.ToLower(u.Email), s) {
		return false
	}
	if st := q.Filter("status"); st != "" && st != AllStatuses && string(u.Status) != st {
		return false
	}
	return true
}

func (UserAdapter) Less(string) func(a, b User) bool {
	return func(a, b User) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
}

func (a UserAdapter) Build(id int64, f UserFields) User {
	created := time.Now()
	if a.Now != nil {
		created = a.Now()
	}
	u := User{ID: id, Role: RoleUser, Status: StatusInactive, CreatedAt: created}
	u = a.Apply(u, f)
	if u.Avatar == "" {
		u.Avatar = GeneratedAvatar(u.Name)
	}
	return u
}

func (UserAdapter) Apply(u User, f UserFields) User {
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Email != nil {
		u.Email = *f.Email
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
	}
	if f.Role != nil && *f.Role != "" {
		u.Role = *f.Role
	}
	if f.Status != nil && *f.Status != "" {
		u.Status = *f.Status
	}
	if f.Avatar != nil {
		if strings.TrimSpace(*f.Avatar) == "" {
			u.Avatar = upload.AvatarPlaceholder
		} else {
			u.Avatar = upload.NormalizeImageURL(*f.Avatar, upload.AvatarPlaceholder)
		}
	}
	return u
}

func (UserAdapter) ImageField() MockImage[UserFields] {
	return MockImage[UserFields]{
		Get:    func(f UserFields) *string { return f.Avatar },
		Set:    func(f UserFields, v *string) UserFields { f.Avatar = v; return f },
		Prefix: "user",
		Label:  "avatar",
	}
}

func (UserAdapter) WithStatus(u User, s Status) User {
	u.Status = s
	return u
}

// GeneratedAvatar returns an initials avatar URL for name.
func GeneratedAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=FF6B2C&color=fff"
}

// NewLiveUsers creates the HTTP user gateway.
func NewLiveUsers(client *apiclient.Client, sess *session.Context, uploader *upload.Uploader, defaultPassword string) *Live[User, UserFields] {
	return NewLive(client, sess, uploader, UserSchema(defaultPassword))
}

// NewMockUsers creates the in-memory user gateway over seed (or the built-in
// fixtures when seed is nil).
func NewMockUsers(seed []User, opts ...MockOption) *Mock[User, UserFields] {
	if seed == nil {
		seed = UserFixtures()
	}
	return NewMock[User, UserFields](UserAdapter{}, UserMessages, seed, opts...)
}
