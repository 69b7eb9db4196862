package handler

import (
	"net/http"
	"orgchart_go/internal/ingest"
	"orgchart_go/internal/service"
	"orgchart_go/pkg/log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReconHandler 负责协调引擎的管理接口（管理员路由）：
// 触发导入运行、查询最近一次运行报告、维护上级姓名别名表、批量重置。
type ReconHandler struct {
	reconService service.ReconService
}

func NewReconHandler(reconService service.ReconService) *ReconHandler {
	return &ReconHandler{reconService: reconService}
}

// CreateAliasRequest 是新建上级姓名别名的请求体。
type CreateAliasRequest struct {
	Alias        string `json:"alias" binding:"required"`
	EmployeeCode string `json:"employeeCode" binding:"required"`
}

// Import 接收一个 XLSX 工作簿并同步执行一次协调运行。
// 运行是批处理语义：处理完整个批次后才返回报告。
// 即使运行部分失败，报告也一并返回，方便运维决定是否重跑。
func (h *ReconHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Missing upload file",
		})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Only .xlsx workbooks are supported",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Failed to open upload file",
		})
		return
	}
	defer f.Close()

	batch, err := ingest.ReadWorkbook(f)
	if err != nil {
		log.Warnf("Import: failed to tokenize workbook %q: %v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Failed to parse workbook",
		})
		return
	}

	report, err := h.reconService.RunBatch(c.Request.Context(), batch)
	if err != nil {
		log.Warnf("Import: reconciliation run failed: %v", err)
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
			"data":    report,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Reconciliation run completed",
		"data":    report,
	})
}

// LatestReport 返回最近一次协调运行的诊断报告。
func (h *ReconHandler) LatestReport(c *gin.Context) {
	report, err := h.reconService.LatestReport()
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
		"message": "Latest report retrieved successfully",
		"data":    report,
	})
}

// ListAliases 返回上级姓名别名表。
func (h *ReconHandler) ListAliases(c *gin.Context) {
	aliases, err := h.reconService.ListAliases()
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
		"message": "Aliases retrieved successfully",
		"data":    aliases,
	})
}

// CreateAlias 新增一条上级姓名别名。
func (h *ReconHandler) CreateAlias(c *gin.Context) {
	var req CreateAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	alias, err := h.reconService.CreateAlias(req.Alias, req.EmployeeCode)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Alias created successfully",
		"data":    alias,
	})
}

// DeleteAlias 删除一条上级姓名别名。
func (h *ReconHandler) DeleteAlias(c *gin.Context) {
	aliasID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid alias ID",
		})
		return
	}

	if err := h.reconService.DeleteAlias(uint(aliasID64)); err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Alias deleted successfully",
	})
}

// ResetEmployees 批量重置员工和任职数据（危险操作，管理员专用）。
func (h *ReconHandler) ResetEmployees(c *gin.Context) {
	if err := h.reconService.ResetEmployees(); err != nil {
		log.Errorf("ResetEmployees: failed to reset employees: %v", err)
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Employees and assignments reset successfully",
	})
}
