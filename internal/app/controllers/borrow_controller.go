package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/services"
	"github.com/chidi/libman/internal/middleware"
)

// BorrowController handles the staged borrowing workflow and loan
// returns
type BorrowController struct {
	borrowService *services.BorrowService
}

// NewBorrowController creates a new BorrowController
func NewBorrowController(borrowService *services.BorrowService) *BorrowController {
	return &BorrowController{borrowService: borrowService}
}

// StageBorrow decodes and stages a borrowing selection
// @Summary Stage a borrowing selection
// @Description Decodes the selection form and stages it under a one-time confirmation token
// @Tags borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StageBorrowRequest true "Selection form"
// @Success 200 {object} dto.APIResponse{data=dto.StageBorrowResponse} "Selection staged"
// @Failure 400 {object} dto.ErrorResponse "Selection contains no books"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /borrow [post]
func (c *BorrowController) StageBorrow(ctx *gin.Context) {
	var req dto.StageBorrowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	stagedBy := ctx.GetInt64(middleware.ContextUserID)

	resp, err := c.borrowService.Stage(ctx, stagedBy, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, resp)
}

// GetStagedSelection re-renders the preview for a staged selection
// @Summary Preview a staged selection
// @Description Returns the preview for a still-staged selection without consuming the confirmation token
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Param token path string true "Confirmation token"
// @Success 200 {object} dto.APIResponse{data=dto.StageBorrowResponse} "Staged selection"
// @Failure 404 {object} dto.ErrorResponse "No staged selection for this token"
// @Router /borrow/{token} [get]
func (c *BorrowController) GetStagedSelection(ctx *gin.Context) {
	token := ctx.Param("token")

	resp, err := c.borrowService.PeekStaged(ctx, token)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, resp)
}

// ConfirmBorrow commits a staged selection
// @Summary Confirm a staged selection
// @Description Consumes the confirmation token and commits the resulting loans in one transaction
// @Tags borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConfirmBorrowRequest true "Confirmation token"
// @Success 200 {object} dto.APIResponse{data=dto.ConfirmBorrowResponse} "Selection committed"
// @Failure 404 {object} dto.ErrorResponse "No staged selection for this token, or book not found"
// @Router /borrow/confirm [post]
func (c *BorrowController) ConfirmBorrow(ctx *gin.Context) {
	var req dto.ConfirmBorrowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.borrowService.Confirm(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, resp)
}

// BorrowByCode commits a single scanned borrow
// @Summary Borrow by scanned code
// @Description One student borrowing one book, identified by scanned code payloads
// @Tags borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.QRBorrowRequest true "Scanned student and book"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowOutcome} "Loan created"
// @Failure 404 {object} dto.ErrorResponse "Student or book not found"
// @Failure 409 {object} dto.ErrorResponse "Book is out of stock"
// @Router /borrow/qr [post]
func (c *BorrowController) BorrowByCode(ctx *gin.Context) {
	var req dto.QRBorrowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	outcome, err := c.borrowService.BorrowByCode(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, outcome)
}

// ReturnLoan marks a loan returned
// @Summary Return a loan
// @Description Marks the loan returned and puts the copy back in stock
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Loan returned"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{id}/return [post]
func (c *BorrowController) ReturnLoan(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.borrowService.ReturnLoan(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.SuccessResponse{Message: "Loan returned"})
}

// UnreturnLoan reverts a loan return
// @Summary Revert a loan return
// @Description Marks the loan outstanding again and takes a copy back off the shelf
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Return reverted"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Book is out of stock"
// @Router /loans/{id}/unreturn [post]
func (c *BorrowController) UnreturnLoan(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.borrowService.UnreturnLoan(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.SuccessResponse{Message: "Loan return reverted"})
}
