package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(limit, offset int) ([]*models.User, error)
	Delete(id int) error

	// verification
	SetVerification(userID int, code string, expiresAt time.Time) error
	MarkVerified(userID int) error

	// password reset (token is single use: cleared together with the update)
	SetResetToken(userID int, token string, expiresAt time.Time) error
	UpdatePassword(userID int, hash string) error

	GetCount() (int, error)
	GetCountByRole(role authz.Role) (int, error)

	// Telegram helpers for doctor notifications
	LinkTelegram(userID int, chatID int64) error
	DoctorChatIDs() ([]int64, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, role, is_verified,
	verification_code, verification_expires_at,
	reset_token, reset_expires_at,
	COALESCE(telegram_chat_id, 0), created_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			name, email, password_hash, role, is_verified,
			verification_code, verification_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.IsVerified,
		user.VerificationCode,
		user.VerificationExpiresAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		role     string
		vCode    sql.NullString
		vExpires sql.NullTime
		rToken   sql.NullString
		rExpires sql.NullTime
		tgChatID sql.NullInt64
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsVerified,
		&vCode, &vExpires, &rToken, &rExpires, &tgChatID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = authz.Role(role)
	if vCode.Valid {
		s := vCode.String
		u.VerificationCode = &s
	}
	if vExpires.Valid {
		t := vExpires.Time
		u.VerificationExpiresAt = &t
	}
	if rToken.Valid {
		s := rToken.String
		u.ResetToken = &s
	}
	if rExpires.Valid {
		t := rExpires.Time
		u.ResetExpiresAt = &t
	}
	if tgChatID.Valid {
		u.TelegramChatID = tgChatID.Int64
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.DB.QueryRow(q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	const q = `
		SELECT id, name, email, role, is_verified, created_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u := &models.User{}
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.IsVerified, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = authz.Role(role)
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *userRepository) SetVerification(userID int, code string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET verification_code=$1, verification_expires_at=$2
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, code, expiresAt, userID)
	return err
}

// MarkVerified flips is_verified and clears the code in one statement,
// so a confirmed code can never be replayed.
func (r *userRepository) MarkVerified(userID int) error {
	const q = `
		UPDATE users
		SET is_verified=TRUE, verification_code=NULL, verification_expires_at=NULL
		WHERE id=$1
	`
	_, err := r.DB.Exec(q, userID)
	return err
}

func (r *userRepository) SetResetToken(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token=$1, reset_expires_at=$2
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	return err
}

func (r *userRepository) UpdatePassword(userID int, hash string) error {
	const q = `
		UPDATE users
		SET password_hash=$1, reset_token=NULL, reset_expires_at=NULL
		WHERE id=$2
	`
	_, err := r.DB.Exec(q, hash, userID)
	return err
}

func (r *userRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&c)
	return c, err
}

func (r *userRepository) GetCountByRole(role authz.Role) (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role=$1`, string(role)).Scan(&c)
	return c, err
}

func (r *userRepository) LinkTelegram(userID int, chatID int64) error {
	_, err := r.DB.Exec(`UPDATE users SET telegram_chat_id=$1 WHERE id=$2`, chatID, userID)
	return err
}

func (r *userRepository) DoctorChatIDs() ([]int64, error) {
	const q = `
		SELECT telegram_chat_id
		FROM users
		WHERE role=$1 AND telegram_chat_id IS NOT NULL AND telegram_chat_id <> 0
	`
	rows, err := r.DB.Query(q, string(authz.RoleDoctor))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
