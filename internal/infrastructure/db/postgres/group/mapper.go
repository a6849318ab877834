package group

import (
	domain "fileshare-api/internal/domain/group"
)

func fromDBModel(model *Group) *domain.Group {
	return &domain.Group{
		UUID:      model.UUID,
		Name:      model.Name,
		OwnerUUID: model.OwnerUUID,

		CreatedAt: model.CreatedAt,
	}
}

func fromDBModels(models *Groups) domain.Groups {
	gs := make(domain.Groups, len(*models))
	for idx, g := range *models {
		gs[idx] = fromDBModel(g)
	}

	return gs
}

func memberFromDBModel(model *Member) *domain.Member {
	return &domain.Member{
		UserUUID: model.UserUUID,
		Username: model.Username,
		Role:     domain.Role(model.Role),

		CreatedAt: model.CreatedAt,
	}
}

func membersFromDBModels(models *Members) domain.Members {
	ms := make(domain.Members, len(*models))
	for idx, m := range *models {
		ms[idx] = memberFromDBModel(m)
	}

	return ms
}
