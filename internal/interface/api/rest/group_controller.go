package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/application/services"
	domainGroup "fileshare-api/internal/domain/group"
	"fileshare-api/internal/infrastructure/jwt"
	fileDTO "fileshare-api/internal/interface/api/rest/dto/file"
	groupDTO "fileshare-api/internal/interface/api/rest/dto/group"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

type GroupController struct {
	groupService ports.GroupService
	logger       *zap.Logger
}

func NewGroupController(
	r *gin.Engine,
	groupService ports.GroupService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *GroupController {
	gc := &GroupController{
		groupService: groupService,
		logger:       logger,
	}

	auth := middleware.AuthMiddleware(jwtService)

	r.GET(RouteGroups, auth, gc.GetGroupsHandler)
	r.POST(RouteGroups, auth, gc.CreateGroupHandler)
	r.GET(RouteGroup, auth, gc.GetGroupDetailsHandler)
	r.POST(RouteGroupMembers, auth, gc.AddMemberHandler)

	return gc
}

func (gc *GroupController) GetGroupsHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	groups, err := gc.groupService.FindUserGroups(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get groups"})
		gc.logger.Error("FindUserGroups() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, groupDTO.ResponseData{
		Data: groupDTO.ToResponseGroups(groups),
	})
}

func (gc *GroupController) CreateGroupHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	var req groupDTO.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := validator.ValidateGroupName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := gc.groupService.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create a group"})
		gc.logger.Error("Create() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, groupDTO.ToResponseGroup(*g))
}

func (gc *GroupController) GetGroupDetailsHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	ok, groupID := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id must be a valid UUID"})
		return
	}

	g, members, files, err := gc.groupService.Details(c.Request.Context(), actor, groupID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		case errors.Is(err, services.ErrNotMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this group"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group details"})
			gc.logger.Error("Details() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, groupDTO.DetailsResponse{
		Group:   groupDTO.ToResponseGroup(*g),
		Members: groupDTO.ToResponseMembers(members),
		Files:   fileDTO.ToResponseFiles(files),
	})
}

func (gc *GroupController) AddMemberHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}
	ok, groupID := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id must be a valid UUID"})
		return
	}

	var req groupDTO.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identifier is required"})
		return
	}

	members, err := gc.groupService.AddMember(
		c.Request.Context(), actor, groupID, req.Identifier, domainGroup.Role(req.Role),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, services.ErrNotAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, domainGroup.ErrAlreadyMember):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add a member"})
			gc.logger.Error("AddMember() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, groupDTO.ToResponseMembers(members))
}
