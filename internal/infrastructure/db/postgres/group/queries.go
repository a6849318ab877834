package group

const (
	SelectGroupByID = `
		SELECT uuid, name, owner_uuid, created_at
		FROM groups
		WHERE uuid = $1
	`
	SelectUserGroups = `
		SELECT g.uuid, g.name, g.owner_uuid, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_uuid = g.uuid
		WHERE m.user_uuid = $1
		ORDER BY g.name
	`
	InsertGroup = `
		INSERT INTO groups (name, owner_uuid)
		VALUES ($1, $2)
		RETURNING uuid, name, owner_uuid, created_at
	`
	SelectMembers = `
		SELECT m.user_uuid, u.username, m.role, m.created_at
		FROM group_members m
		JOIN users u ON u.uuid = m.user_uuid
		WHERE m.group_uuid = $1
		ORDER BY m.created_at
	`
	SelectMemberRole = `
		SELECT role
		FROM group_members
		WHERE group_uuid = $1 AND user_uuid = $2
	`
	InsertMember = `
		INSERT INTO group_members (group_uuid, user_uuid, role)
		VALUES ($1, $2, $3)
	`
)
