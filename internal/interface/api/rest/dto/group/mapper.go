package group

import (
	"fileshare-api/internal/domain/group"
)

func ToResponseGroup(gDomain group.Group) Group {
	return Group{
		ID:        gDomain.UUID,
		Name:      gDomain.Name,
		OwnerID:   gDomain.OwnerUUID,
		CreatedAt: gDomain.CreatedAt,
	}
}

func ToResponseGroups(gDomain group.Groups) Groups {
	gs := make(Groups, len(gDomain))
	for idx, g := range gDomain {
		gs[idx] = ToResponseGroup(*g)
	}

	return gs
}

func ToResponseMembers(mDomain group.Members) Members {
	ms := make(Members, len(mDomain))
	for idx, m := range mDomain {
		ms[idx] = Member{
			UserID:   m.UserUUID,
			Username: m.Username,
			Role:     string(m.Role),
		}
	}

	return ms
}
