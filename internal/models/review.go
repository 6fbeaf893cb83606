package models

import "time"

// Review is a user's rating of a completed application.
type Review struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	ApplicationID int64     `db:"application_id" json:"application_id"`
	Rating        int       `db:"rating" json:"rating"`
	IsVisible     bool      `db:"is_visible" json:"is_visible"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ReviewTarget is the slice of an application needed to decide review eligibility.
type ReviewTarget struct {
	ApplicationID int64             `db:"id"`
	CourseID      int64             `db:"course_id"`
	Status        ApplicationStatus `db:"status"`
}

// SubmitReviewRequest is the review payload.
type SubmitReviewRequest struct {
	UserID        int64 `json:"userId" validate:"required,gt=0"`
	ApplicationID int64 `json:"applicationId" validate:"required,gt=0"`
	Rating        int   `json:"rating"`
}

// CourseReview is a visible review with its author's public name.
type CourseReview struct {
	ID          int64     `db:"id" json:"id"`
	Rating      int       `db:"rating" json:"rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UserName    string    `db:"user_name" json:"name"`
	UserSurname string    `db:"user_surname" json:"surname"`
}
