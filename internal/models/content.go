package models

import (
	"time"

	"github.com/lib/pq"
)

type NewsType struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Type string `gorm:"size:100;not null"        json:"type"`
}

type News struct {
	ID       uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string         `gorm:"not null"                 json:"title"`
	Body     string         `gorm:"not null"                 json:"body"`
	Keywords pq.StringArray `gorm:"type:text[]"              json:"keywords"`
	ImageURL string         `json:"image_url"`
	MinText  string         `json:"min_text"`
	NewsDate time.Time      `gorm:"not null"                 json:"news_date"`
	TypeID   uint           `gorm:"index;not null"           json:"type_id"`
	Type     *NewsType      `json:"type,omitempty"`
}

type Event struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description string     `gorm:"not null"                 json:"description"`
	EventDate   *time.Time `json:"event_date"`
	ImageURL    string     `json:"image_url"`
	IsActive    bool       `gorm:"not null;default:true"    json:"is_active"`
	Location    *string    `json:"location"`
}

type Project struct {
	ID       uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string         `gorm:"not null"                 json:"title"`
	Body     string         `gorm:"not null"                 json:"body"`
	IsActive bool           `gorm:"not null;default:true"    json:"is_active"`
	Keywords pq.StringArray `gorm:"type:text[]"              json:"keywords"`
	Theme    string         `gorm:"size:100"                 json:"theme"`
	Category string         `gorm:"size:100"                 json:"category"`
}

type Poll struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"    json:"id"`
	Theme     string         `gorm:"size:100;not null"           json:"theme"`
	IsActive  bool           `gorm:"not null;default:true"       json:"is_active"`
	Questions []PollQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

type PollQuestion struct {
	ID           uint         `gorm:"primaryKey;autoIncrement"    json:"id"`
	QuestionText string       `gorm:"not null"                    json:"question_text"`
	PollID       uint         `gorm:"index;not null"              json:"poll_id"`
	Answers      []PollAnswer `gorm:"constraint:OnDelete:CASCADE" json:"answers"`
}

type PollAnswer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnswerText string `gorm:"not null"                 json:"answer_text"`
	QuestionID uint   `gorm:"index;not null"           json:"question_id"`
}

type Banner struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageURL    string `gorm:"not null"                 json:"image_url"`
	RedirectURL string `gorm:"not null"                 json:"redirect_url"`
	IsActive    bool   `gorm:"not null;default:true"    json:"is_active"`
	CountOrder  int    `gorm:"not null"                 json:"count_order"`
}

type Partner struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	LogoURL     string  `gorm:"not null"                 json:"logo_url"`
	PartnerName string  `gorm:"not null"                 json:"partner_name"`
	PartnerURL  *string `json:"partner_url"`
	CountOrder  int     `gorm:"not null"                 json:"count_order"`
}

type Document struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"not null"                 json:"title"`
	FileURL  string `gorm:"not null"                 json:"file_url"`
	IsActive bool   `gorm:"not null;default:true"    json:"is_active"`
}

type Feedback struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName  string  `gorm:"not null"                 json:"first_name"`
	LastName   string  `gorm:"not null"                 json:"last_name"`
	MiddleName string  `json:"middle_name"`
	Email      *string `gorm:"size:320"                 json:"email"`
	Message    string  `gorm:"not null"                 json:"message"`
	IsAnswered bool    `gorm:"not null;default:false"   json:"is_answered"`
	Response   *string `json:"response"`
}

type Subscriber struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"size:320;not null"        json:"email"`
	SubscribedAt time.Time `gorm:"not null;autoCreateTime"  json:"subscribed_at"`
	IsConfirmed  bool      `gorm:"not null;default:false"   json:"is_confirmed"`
	TypeID       uint      `gorm:"index;not null"           json:"type_id"`
	Type         *NewsType `json:"type,omitempty"`
}
