package file

const (
	SelectFileByID = `
		SELECT uuid, stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public, created_at
		FROM files
		WHERE uuid = $1
	`
	SelectOwnerFiles = `
		SELECT uuid, stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public, created_at
		FROM files
		WHERE owner_uuid = $1 AND group_uuid IS NULL
		ORDER BY created_at DESC
		LIMIT 50 OFFSET ( ($2 - 1) * 50 )
	`
	SelectGroupFiles = `
		SELECT uuid, stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public, created_at
		FROM files
		WHERE group_uuid = $1
		ORDER BY created_at DESC
	`
	InsertFile = `
		INSERT INTO files (stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING
		  uuid, stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public, created_at
	`
	ToggleFileSharing = `
		UPDATE files
		SET is_public = NOT is_public
		WHERE uuid = $1
		RETURNING
		  uuid, stored_name, original_name, blob_ref, size_bytes, mime_type, owner_uuid, group_uuid, is_public, created_at
	`
	DeleteFileByID = `DELETE FROM files WHERE uuid = $1`
)
