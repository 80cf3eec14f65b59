package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an end-user authenticated by phone OTP
type User struct {
	ID          uuid.UUID `json:"id"`
	Phone       string    `json:"phone"`
	PhoneMasked string    `json:"phoneMasked"`
	Language    string    `json:"language"`
	IsNew       bool      `json:"isNew"`
	KYCStatus   string    `json:"kycStatus"`
	FirstName   *string   `json:"firstName,omitempty"`
	LastName    *string   `json:"lastName,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OTPRequest is a pending OTP challenge. Only the bcrypt digest of the code
// is stored; the challenge is single-use (verified flips false->true once).
type OTPRequest struct {
	ID        string
	Phone     string
	OTPHash   string
	Channel   string
	Locale    string
	DeviceID  *string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Session is the single active refresh session for a user. The raw refresh
// token is never stored, only its SHA-256 hex digest.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	DeviceID         *string
	Revoked          bool
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// Admin is a back-office operator authenticated by email and password.
type Admin struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}

// AdminRefreshToken is stored by raw token value; at most one live token
// exists per admin.
type AdminRefreshToken struct {
	Token     string
	AdminID   uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// BlacklistedToken is an admin access token revoked before its natural
// expiry. Entries are purgeable after ExpiresAt.
type BlacklistedToken struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Advisor is a financial advisor listed on the platform.
type Advisor struct {
	ID              uuid.UUID `json:"id"`
	Salutation      string    `json:"salutation"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Designation     string    `json:"designation"`
	YearsExperience int       `json:"yearsExperience"`
	ExpertiseTags   []string  `json:"expertiseTags"`
	Role            string    `json:"role"`
	ImageObject     *string   `json:"imageObject,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Review is a user rating of an advisor.
type Review struct {
	ID        uuid.UUID `json:"id"`
	AdvisorID uuid.UUID `json:"advisorId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Banner is a promotional banner shown in the app within its validity window.
type Banner struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ImageObject string    `json:"imageUrl"`
	RedirectURL string    `json:"redirectUrl"`
	Screen      string    `json:"screen"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidTill   time.Time `json:"validTill"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GlossaryTerm is a financial-dictionary entry managed by admins.
type GlossaryTerm struct {
	ID         uuid.UUID `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Quiz groups questions; the app always serves the latest quiz.
type Quiz struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"createdAt"`
}

// QuizQuestion is a four-option multiple choice question.
type QuizQuestion struct {
	ID      uuid.UUID `json:"id"`
	QuizID  uuid.UUID `json:"quizId"`
	Text    string    `json:"text"`
	OptionA string    `json:"optionA"`
	OptionB string    `json:"optionB"`
	OptionC string    `json:"optionC"`
	OptionD string    `json:"optionD"`
	Correct string    `json:"correct"`
}

// Meeting is a scheduled advisor call with an optional cached transcript.
type Meeting struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	AdvisorID          uuid.UUID `json:"advisorId"`
	MeetLink           string    `json:"meetLink"`
	EventID            *string   `json:"eventId,omitempty"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	Transcript         *string   `json:"transcript,omitempty"`
	ConferenceRecordID *string   `json:"conferenceRecordId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FinancialData is one financial-health submission with its computed score.
type FinancialData struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"userId"`
	MonthlySavings        float64   `json:"monthlySavings"`
	SIPInvestments        float64   `json:"sipInvestments"`
	TotalAssets           float64   `json:"totalAssets"`
	TotalLoans            float64   `json:"totalLoans"`
	MonthlyEMI            float64   `json:"monthlyEmi"`
	CreditCardOutstanding float64   `json:"creditCardOutstanding"`
	InsuranceCoverage     float64   `json:"insuranceCoverage"`
	TaxSavings            float64   `json:"taxSavings"`
	RetirementFund        float64   `json:"retirementFund"`
	MonthlyIncome         float64   `json:"monthlyIncome"`
	MonthlyExpenses       float64   `json:"monthlyExpenses"`
	SavingsRatio          float64   `json:"savingsRatio"`
	Score                 int       `json:"score"`
	Rating                string    `json:"rating"`
	CreatedAt             time.Time `json:"createdAt"`
}
