package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type TuningType string

const (
	TuningStage1     TuningType = "STAGE1"
	TuningStage2     TuningType = "STAGE2"
	TuningExhaust    TuningType = "EXHAUST"
	TuningSuspension TuningType = "SUSPENSION"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusRejected   RequestStatus = "REJECTED"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber"`
	Location     string `json:"location"`
	Role         Role   `gorm:"not null;default:USER"    json:"role"`
	Banned       bool   `gorm:"not null;default:false"   json:"banned"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Roles returns the role set the account holds, admin implying user.
func (u *User) Roles() []string {
	if u.IsAdmin() {
		return []string{string(RoleUser), string(RoleAdmin)}
	}
	return []string{string(RoleUser)}
}

// RefreshToken holds the single live opaque refresh credential of a user.
// The unique index on UserID backs the replace-on-issue invariant.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
}

type Car struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"index;not null"           json:"userId"`
	Alias      string `json:"alias"`
	Brand      string `gorm:"not null"                 json:"brand"`
	Model      string `gorm:"not null"                 json:"model"`
	HorsePower int    `json:"horsePower"`
	Torque     int    `json:"torque"`
	Bio        string `gorm:"type:text"                json:"bio"`
	PhotoURL   string `gorm:"type:text"                json:"photoUrl"`
}

type CarPhoto struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename     string `gorm:"not null"                 json:"filename"`
	URL          string `gorm:"not null"                 json:"url"`
	OriginalName string `json:"originalName"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type Audio struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename     string `gorm:"not null"                 json:"filename"`
	URL          string `gorm:"not null"                 json:"url"`
	OriginalName string `json:"originalName"`
	Title        string `json:"title"`
	LastPosition int    `gorm:"default:0"                json:"lastPosition"`
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"userId"`
	Message   string    `gorm:"not null;size:1000"       json:"message"`
	CreatedAt time.Time `gorm:"index;not null"           json:"timestamp"`
}

type ForumPost struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"userId"`
	Title     string    `gorm:"not null"                 json:"title"`
	Content   string    `gorm:"type:text;not null"       json:"content"`
	Category  string    `gorm:"index"                    json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ForumComment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"index;not null"           json:"postId"`
	UserID    uint      `gorm:"index;not null"           json:"userId"`
	Content   string    `gorm:"type:text;not null"       json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ForumLike struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"postId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"userId"`
	IsLike    bool      `gorm:"not null"                                json:"isLike"`
	CreatedAt time.Time `json:"createdAt"`
}

type ForumPostPhoto struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID       uint   `gorm:"index;not null"           json:"postId"`
	Filename     string `gorm:"not null"                 json:"filename"`
	URL          string `gorm:"not null"                 json:"url"`
	OriginalName string `json:"originalName"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type TuningRequest struct {
	ID                    uint          `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID                uint          `gorm:"index;not null"             json:"userId"`
	Model                 string        `gorm:"not null"                   json:"model"`
	Year                  int           `gorm:"column:model_year;not null" json:"year"`
	Engine                string        `gorm:"not null"                   json:"engine"`
	FuelType              string        `gorm:"not null"                   json:"fuelType"`
	TuningType            TuningType    `gorm:"not null"                   json:"tuningType"`
	CurrentPower          string        `json:"currentPower"`
	DesiredPower          string        `json:"desiredPower"`
	RemoveEmissionControl bool          `json:"removeEmissionControl"`
	ExhaustType           string        `json:"exhaustType"`
	DownpipeType          string        `json:"downpipeType"`
	WantsSoundClip        bool          `json:"wantsSoundClip"`
	SuspensionType        string        `json:"suspensionType"`
	CurrentHeight         string        `json:"currentHeight"`
	DesiredHeight         string        `json:"desiredHeight"`
	NeedsAlignment        bool          `json:"needsAlignment"`
	AdditionalNotes       string        `json:"additionalNotes"`
	Status                RequestStatus `gorm:"not null;default:PENDING"   json:"status"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}
