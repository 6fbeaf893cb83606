package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
)

const dateLayout = "2006-01-02"

// ErrStatusNotUpdated is returned when the locked application row could not be updated.
var ErrStatusNotUpdated = errors.New("application status update affected no rows")

// ApplicationRepository persists applications together with their status history.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts the application in status new together with its creation history entry.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin application transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	app.Status = models.StatusNew
	const insertApplication = `INSERT INTO applications (user_id, course_id, desired_start_date, payment_method, status)
VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	row := tx.QueryRowxContext(ctx, insertApplication, app.UserID, app.CourseID, app.DesiredStartDate.Format(dateLayout), app.PaymentMethod, app.Status)
	if err = row.Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return fmt.Errorf("insert application: %w", database.Classify(err))
	}

	creator := app.UserID
	if err = insertHistory(ctx, tx, app.ID, nil, models.StatusNew, &creator, models.CreationComment); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit application: %w", err)
	}
	return nil
}

// TransitionStatus moves the application to newStatus under a row lock and records the change.
// Requests that do not change the status roll back and report Changed=false. actor is attributed
// only when it names a stored administrator; otherwise the change is recorded as a system change.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id int64, newStatus models.ApplicationStatus, actor *int64) (result *models.StatusTransition, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status transition: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.ApplicationStatus
	const lockQuery = `SELECT status FROM applications WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	result = &models.StatusTransition{ApplicationID: id, OldStatus: current, NewStatus: newStatus}
	if current == newStatus {
		if err = tx.Rollback(); err != nil {
			return nil, fmt.Errorf("release application lock: %w", err)
		}
		return result, nil
	}

	const updateQuery = `UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := tx.ExecContext(ctx, updateQuery, newStatus, id)
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", database.Classify(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	if affected == 0 {
		err = ErrStatusNotUpdated
		return nil, err
	}

	var changedBy *int64
	if actor != nil && *actor != models.SentinelAdminID {
		var isAdmin bool
		const adminQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'admin')`
		if err = tx.GetContext(ctx, &isAdmin, adminQuery, *actor); err != nil {
			return nil, fmt.Errorf("verify acting admin: %w", err)
		}
		if isAdmin {
			adminID := *actor
			changedBy = &adminID
		}
	}

	if err = insertHistory(ctx, tx, id, &current, newStatus, changedBy, models.StatusChangeComment(changedBy)); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status transition: %w", err)
	}
	result.Changed = true
	return result, nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, applicationID int64, oldStatus *models.ApplicationStatus, newStatus models.ApplicationStatus, changedBy *int64, comment string) error {
	const query = `INSERT INTO application_status_history (application_id, old_status, new_status, changed_by, change_comment)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, applicationID, oldStatus, newStatus, changedBy, comment); err != nil {
		return fmt.Errorf("insert status history: %w", database.Classify(err))
	}
	return nil
}

// FindByID returns a single application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	const query = `SELECT id, user_id, course_id, desired_start_date, payment_method, status, created_at, updated_at FROM applications WHERE id = $1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// Exists reports whether an application with id is stored.
func (r *ApplicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// ListHistory returns the audit trail of an application, oldest entry first.
func (r *ApplicationRepository) ListHistory(ctx context.Context, applicationID int64) ([]models.StatusHistoryEntry, error) {
	const query = `SELECT id, application_id, old_status, new_status, changed_by, change_comment, changed_at
FROM application_status_history WHERE application_id = $1 ORDER BY changed_at, id`
	entries := make([]models.StatusHistoryEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, applicationID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return entries, nil
}

// ListByUser returns the user's applications with course details and review presence, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]models.UserApplication, error) {
	const query = `SELECT a.id, a.course_id, c.name AS course_name, c.price AS course_price, a.desired_start_date,
       a.payment_method, a.status, a.created_at, a.updated_at,
       rv.id AS review_id, rv.rating, (rv.id IS NOT NULL) AS has_review
FROM applications a
JOIN courses c ON c.id = a.course_id
LEFT JOIN reviews rv ON rv.application_id = a.id
WHERE a.user_id = $1
ORDER BY a.created_at DESC, a.id DESC`
	items := make([]models.UserApplication, 0)
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}
	return items, nil
}

// ListForAdmin returns every application ordered by status priority and then newest first.
func (r *ApplicationRepository) ListForAdmin(ctx context.Context) ([]models.AdminApplication, error) {
	const query = `SELECT a.id, a.user_id, u.name AS user_name, u.surname AS user_surname, u.email AS user_email,
       a.course_id, c.name AS course_name, c.price AS course_price, a.desired_start_date,
       a.payment_method, a.status, a.created_at, a.updated_at
FROM applications a
JOIN users u ON u.id = a.user_id
JOIN courses c ON c.id = a.course_id
ORDER BY CASE a.status WHEN 'new' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'completed' THEN 3 ELSE 4 END,
         a.created_at DESC, a.id DESC`
	items := make([]models.AdminApplication, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list admin applications: %w", err)
	}
	return items, nil
}
