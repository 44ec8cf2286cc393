package handlers

import (
	"net/http"
	"strconv"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isRecruiting := true
	if req.IsRecruiting != nil {
		isRecruiting = *req.IsRecruiting
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	project := &repository.Project{
		CreatorID:      userID,
		Title:          req.Title,
		Description:    req.Description,
		TargetTeamSize: req.TargetTeamSize,
		RequiredRoles:  req.RequiredRoles,
		RequiredSkills: req.RequiredSkills,
		ProjectStage:   repository.ProjectStage(req.ProjectStage),
		IsRecruiting:   isRecruiting,
		IsPublic:       isPublic,
	}

	created, err := h.projectService.Create(c.Request.Context(), project)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(created))
}

// List serves the public project directory.
// GET /api/projects?keyword=&skills=&roles=&stages=&page=&pageSize=
func (h *ProjectHandler) List(c *gin.Context) {
	filters := repository.ProjectFilters{
		Keyword:       c.Query("keyword"),
		Skills:        c.QueryArray("skills"),
		RequiredRoles: c.QueryArray("roles"),
		Stages:        c.QueryArray("stages"),
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	projects, total, err := h.projectService.List(c.Request.Context(), filters, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	response := make([]models.ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{
		Projects: response,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ProjectHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	response := make([]models.ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id := c.Param("id")
	viewerID := middleware.GetUserID(c)

	project, err := h.projectService.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.ProjectUpdate{
		Title:          req.Title,
		Description:    req.Description,
		TargetTeamSize: req.TargetTeamSize,
		RequiredRoles:  req.RequiredRoles,
		RequiredSkills: req.RequiredSkills,
		IsRecruiting:   req.IsRecruiting,
		IsPublic:       req.IsPublic,
	}
	if req.ProjectStage != nil {
		stage := repository.ProjectStage(*req.ProjectStage)
		update.ProjectStage = &stage
	}

	project, err := h.projectService.Update(c.Request.Context(), c.Param("id"), userID, update)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	members, err := h.projectService.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ProjectMemberResponse, len(members))
	for i, m := range members {
		response[i] = toProjectMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	err := h.projectService.RemoveMember(c.Request.Context(), c.Param("id"), userID, c.Param("memberId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
