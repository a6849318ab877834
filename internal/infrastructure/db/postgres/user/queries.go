package user

const (
	SelectUserByEmail = `
		SELECT uuid, username, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`
	SelectUserByIdentifier = `
		SELECT uuid, username, email, password_hash, role, created_at
		FROM users
		WHERE email = $1 OR username = $1
	`
	InsertUser = `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING uuid, username, email, password_hash, role, created_at
	`
)
