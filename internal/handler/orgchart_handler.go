package handler

import (
	"net/http"
	"orgchart_go/internal/service"
	"orgchart_go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// OrgChartHandler 负责组织架构的只读视图接口和职级管理接口。
// 视图全部现算，接口不持有任何跨请求状态。
type OrgChartHandler struct {
	orgChartService service.OrgChartService
}

func NewOrgChartHandler(orgChartService service.OrgChartService) *OrgChartHandler {
	return &OrgChartHandler{orgChartService: orgChartService}
}

// ReorderLevelsRequest 是职级批量重排序的请求体。
// 必须恰好覆盖现有全部职级 ID，按期望的展示顺序排列。
type ReorderLevelsRequest struct {
	OrderedIDs []uint `json:"orderedIds" binding:"required"`
}

// GetTree 返回嵌套的汇报树（森林）。
func (h *OrgChartHandler) GetTree(c *gin.Context) {
	tree, err := h.orgChartService.GetReportingTree()
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Reporting tree retrieved successfully",
		"data":    tree,
	})
}

// ListEmployees 返回员工平铺列表。
func (h *OrgChartHandler) ListEmployees(c *gin.Context) {
	employees, err := h.orgChartService.ListEmployees()
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Employees retrieved successfully",
		"data":    employees,
	})
}

// ListVacancies 返回当前空缺岗位（含优先级、空缺天数）和共占岗位。
func (h *OrgChartHandler) ListVacancies(c *gin.Context) {
	vacancies, err := h.orgChartService.ListVacancies(time.Now())
	if err != nil {
		log.Warnf("ListVacancies: failed to project vacancies: %v", err)
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Vacancies retrieved successfully",
		"data":    vacancies,
	})
}

// ListActiveAssignments 返回指定岗位当前的活跃任职。
func (h *OrgChartHandler) ListActiveAssignments(c *gin.Context) {
	positionCode := c.Param("code")

	assignments, err := h.orgChartService.GetActiveAssignments(positionCode, time.Now())
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Active assignments retrieved successfully",
		"data":    assignments,
	})
}

// ListLevels 返回按展示顺序排列的职级列表。
func (h *OrgChartHandler) ListLevels(c *gin.Context) {
	levels, err := h.orgChartService.ListLevels()
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Levels retrieved successfully",
		"data":    levels,
	})
}

// ReorderLevels 批量重排职级展示顺序（管理员路由）。
func (h *OrgChartHandler) ReorderLevels(c *gin.Context) {
	var req ReorderLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	if err := h.orgChartService.ReorderLevels(req.OrderedIDs); err != nil {
		log.Warnf("ReorderLevels: failed to reorder levels: %v", err)
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Levels reordered successfully",
	})
}
