package models

import (
	"fmt"
	"time"
)

// ApplicationStatus is the lifecycle state of an enrollment application.
type ApplicationStatus string

const (
	StatusNew        ApplicationStatus = "new"
	StatusInProgress ApplicationStatus = "in_progress"
	StatusCompleted  ApplicationStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// PaymentMethod enumerates accepted payment options.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentPhoneTransfer PaymentMethod = "phone_transfer"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentPhoneTransfer
}

// SentinelAdminID identifies the built-in administrator that has no users row.
// Changes made under it are attributed to the system.
const SentinelAdminID int64 = 0

// CreationComment is recorded on the history entry written with a new application.
const CreationComment = "created"

// StatusChangeComment describes who moved an application. changedBy is the verified
// administrator or nil when the change is unattributed.
func StatusChangeComment(changedBy *int64) string {
	if changedBy == nil {
		return "status changed by system administrator"
	}
	return fmt.Sprintf("status changed by administrator ID: %d", *changedBy)
}

// Application is a user's enrollment request.
type Application struct {
	ID               int64             `db:"id" json:"id"`
	UserID           int64             `db:"user_id" json:"user_id"`
	CourseID         int64             `db:"course_id" json:"course_id"`
	DesiredStartDate time.Time         `db:"desired_start_date" json:"desired_start_date"`
	PaymentMethod    PaymentMethod     `db:"payment_method" json:"payment_method"`
	Status           ApplicationStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// StatusHistoryEntry is an append-only audit record of a status change.
type StatusHistoryEntry struct {
	ID            int64              `db:"id" json:"id"`
	ApplicationID int64              `db:"application_id" json:"application_id"`
	OldStatus     *ApplicationStatus `db:"old_status" json:"old_status"`
	NewStatus     ApplicationStatus  `db:"new_status" json:"new_status"`
	ChangedBy     *int64             `db:"changed_by" json:"changed_by"`
	ChangeComment string             `db:"change_comment" json:"change_comment"`
	ChangedAt     time.Time          `db:"changed_at" json:"changed_at"`
}

// CreateApplicationRequest is the enrollment payload.
type CreateApplicationRequest struct {
	UserID        int64  `json:"userId" validate:"required,gt=0"`
	CourseID      int64  `json:"courseId" validate:"required,gt=0"`
	StartDate     string `json:"startDate" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// TransitionStatusRequest moves an application to a new status on behalf of an optional admin.
type TransitionStatusRequest struct {
	ApplicationID int64  `json:"-" validate:"required,gt=0"`
	NewStatus     string `json:"newStatus" validate:"required"`
	AdminID       *int64 `json:"adminId"`
}

// StatusTransition reports the outcome of a status change. Changed is false for no-op requests.
type StatusTransition struct {
	ApplicationID int64             `json:"applicationId"`
	OldStatus     ApplicationStatus `json:"oldStatus"`
	NewStatus     ApplicationStatus `json:"newStatus"`
	Changed       bool              `json:"-"`
}

// UserApplication is an application as shown to its owner.
type UserApplication struct {
	ID               int64             `db:"id" json:"id"`
	CourseID         int64             `db:"course_id" json:"course_id"`
	CourseName       string            `db:"course_name" json:"course_name"`
	CoursePrice      float64           `db:"course_price" json:"course_price"`
	DesiredStartDate time.Time         `db:"desired_start_date" json:"desired_start_date"`
	PaymentMethod    PaymentMethod     `db:"payment_method" json:"payment_method"`
	Status           ApplicationStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
	ReviewID         *int64            `db:"review_id" json:"review_id"`
	Rating           *int              `db:"rating" json:"rating"`
	HasReview        bool              `db:"has_review" json:"has_review"`
}

// AdminApplication is an application row for the admin panel.
type AdminApplication struct {
	ID               int64             `db:"id" json:"id"`
	UserID           int64             `db:"user_id" json:"user_id"`
	UserName         string            `db:"user_name" json:"user_name"`
	UserSurname      string            `db:"user_surname" json:"user_surname"`
	UserEmail        string            `db:"user_email" json:"user_email"`
	CourseID         int64             `db:"course_id" json:"course_id"`
	CourseName       string            `db:"course_name" json:"course_name"`
	CoursePrice      float64           `db:"course_price" json:"course_price"`
	DesiredStartDate time.Time         `db:"desired_start_date" json:"desired_start_date"`
	PaymentMethod    PaymentMethod     `db:"payment_method" json:"payment_method"`
	Status           ApplicationStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}
