package store

import (
	"database/sql"
	"time"

	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (s *Store) CreateUser(user *models.User, passwordHash string) error {
	s.logger.Info("Creating user", "email", user.Email, "name", user.Name)

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	query := `
		INSERT INTO users (id, email, password_hash, name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := s.DB.QueryRow(
		query,
		user.ID, user.Email, passwordHash, user.Name,
		user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		s.logger.Error("Failed to create user", "error", err, "email", user.Email)
		return err
	}

	s.logger.Info("User created successfully", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *Store) GetUserByID(userID string) (*models.User, error) {
	s.logger.Debug("Getting user by ID", "user_id", userID)

	query := `
		SELECT id, email, name, avatar_url, created_at, updated_at
		FROM users WHERE id = $1`

	user := &models.User{}
	err := s.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		s.logger.Debug("User not found by ID", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get user by ID", "error", err, "user_id", userID)
		return nil, err
	}

	return user, nil
}

// GetUserByEmail also returns the stored password hash for credential checks.
func (s *Store) GetUserByEmail(email string) (*models.User, string, error) {
	s.logger.Debug("Getting user by email", "email", email)

	query := `
		SELECT id, email, password_hash, name, avatar_url, created_at, updated_at
		FROM users WHERE email = $1`

	user := &models.User{}
	var passwordHash string
	err := s.DB.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &passwordHash, &user.Name, &user.AvatarURL,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		s.logger.Debug("User not found by email", "email", email)
		return nil, "", nil
	}
	if err != nil {
		s.logger.Error("Failed to get user by email", "error", err, "email", email)
		return nil, "", err
	}

	return user, passwordHash, nil
}

func (s *Store) GetUsersByIDs(userIDs []string) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	s.logger.Debug("Getting users by IDs", "count", len(userIDs))

	query := `
		SELECT id, email, name, avatar_url, created_at, updated_at
		FROM users WHERE id = ANY($1)`

	rows, err := s.DB.Query(query, pq.Array(userIDs))
	if err != nil {
		s.logger.Error("Failed to query users by IDs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.AvatarURL,
			&user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (s *Store) UpdateUser(userID string, updates *models.UserUpdateRequest) error {
	s.logger.Info("Updating user", "user_id", userID)

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id`

	err := s.DB.QueryRow(query, userID, updates.Name, updates.AvatarURL).Scan(&userID)
	if err != nil {
		s.logger.Error("Failed to update user", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("User updated successfully", "user_id", userID)
	return nil
}

func (s *Store) UpdatePassword(userID, passwordHash string) error {
	s.logger.Info("Updating password", "user_id", userID)

	query := `UPDATE users SET password_hash = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	result, err := s.DB.Exec(query, userID, passwordHash)
	if err != nil {
		s.logger.Error("Failed to update password", "error", err, "user_id", userID)
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	s.logger.Info("Password updated successfully", "user_id", userID)
	return nil
}

func (s *Store) CreateUserSession(userID, sessionID, deviceInfo, ipAddress string) error {
	s.logger.Debug("Creating user session", "user_id", userID, "session_id", sessionID)

	query := `
		INSERT INTO user_sessions (user_id, session_id, device_info, ip_address)
		VALUES ($1, $2, $3, $4)`

	_, err := s.DB.Exec(query, userID, sessionID, deviceInfo, ipAddress)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (s *Store) TouchUserSession(sessionID string) error {
	query := `UPDATE user_sessions SET last_active = CURRENT_TIMESTAMP WHERE session_id = $1`
	_, err := s.DB.Exec(query, sessionID)
	return err
}

// AddContact records the directional relation owner -> contact. The relation
// is immutable after insert; re-adding an existing contact reports false with
// no write.
func (s *Store) AddContact(userID, contactID string) (bool, error) {
	s.logger.Info("Adding contact", "user_id", userID, "contact_id", contactID)

	result, err := s.DB.Exec(`
		INSERT INTO contacts (user_id, contact_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, contact_id) DO NOTHING`,
		userID, contactID,
	)
	if err != nil {
		s.logger.Error("Failed to add contact", "error", err, "user_id", userID, "contact_id", contactID)
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		s.logger.Debug("Contact already present", "user_id", userID, "contact_id", contactID)
		return false, nil
	}

	s.logger.Info("Contact added", "user_id", userID, "contact_id", contactID)
	return true, nil
}

// GetContacts lists the user's contacts joined with each contact's current
// profile, ordered by name.
func (s *Store) GetContacts(userID string) ([]models.ContactResponse, error) {
	s.logger.Debug("Getting contacts", "user_id", userID)

	query := `
		SELECT c.user_id, c.contact_id, c.added_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM contacts c
		JOIN users u ON u.id = c.contact_id
		WHERE c.user_id = $1
		ORDER BY u.name`

	rows, err := s.DB.Query(query, userID)
	if err != nil {
		s.logger.Error("Failed to query contacts", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var contacts []models.ContactResponse
	for rows.Next() {
		var cr models.ContactResponse
		err := rows.Scan(
			&cr.Contact.UserID, &cr.Contact.ContactID, &cr.Contact.AddedAt,
			&cr.User.ID, &cr.User.Email, &cr.User.Name, &cr.User.AvatarURL,
			&cr.User.CreatedAt, &cr.User.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, cr)
	}

	s.logger.Debug("Retrieved contacts", "user_id", userID, "contact_count", len(contacts))
	return contacts, rows.Err()
}
