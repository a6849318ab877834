package group

type (
	CreateRequest struct {
		Name string `json:"name"`
	}
	AddMemberRequest struct {
		Identifier string `json:"identifier"`
		Role       string `json:"role"`
	}
)
