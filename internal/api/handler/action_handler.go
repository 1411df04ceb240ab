package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceflow/console/internal/api/middleware"
	"github.com/invoiceflow/console/internal/core/ports"
)

type ActionHandler struct {
	actions ports.ActionService
}

func NewActionHandler(actions ports.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// credentialsPayload rides along on any mutating request to answer a
// pending credential challenge. All fields optional; form-level checks for
// these live in the action service so messages stay localized.
type credentialsPayload struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Register bool   `json:"register,omitempty"`
}

func (p credentialsPayload) toCredentials() ports.Credentials {
	return ports.Credentials{
		PastedToken: p.Token,
		Email:       p.Email,
		Password:    p.Password,
		Name:        p.Name,
		Register:    p.Register,
	}
}

type approveRequest struct {
	RiskTier    string             `json:"risk_tier"`
	APRPercent  float64            `json:"apr_percent"`
	Credentials credentialsPayload `json:"credentials"`
}

type markPaidRequest struct {
	Amount      float64            `json:"amount"`
	Credentials credentialsPayload `json:"credentials"`
}

type fundRequest struct {
	Amount      float64            `json:"amount"`
	APRPercent  float64            `json:"apr_percent"`
	TermMonths  int                `json:"term_months"`
	Credentials credentialsPayload `json:"credentials"`
}

type createInvoiceRequest struct {
	Title         string             `json:"title"`
	InvoiceNumber string             `json:"invoice_number"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	TermMonths    int                `json:"term_months"`
	APRPercent    float64            `json:"apr_percent"`
	DueDate       string             `json:"due_date"`
	FundingTarget float64            `json:"funding_target"`
	EmergencyLane bool               `json:"emergency_lane"`
	Tags          []string           `json:"tags"`
	Submit        bool               `json:"submit"`
	Credentials   credentialsPayload `json:"credentials"`
}

type submitRequest struct {
	Credentials credentialsPayload `json:"credentials"`
}

type depositRequest struct {
	Amount float64 `json:"amount"`
}

// Approve records the admin's risk tier and APR on a submitted invoice.
//
// @Summary      Approve an invoice
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Invoice ID"
// @Param        body  body      approveRequest  true  "Approval terms"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /admin/invoices/{id}/approve [post]
func (h *ActionHandler) Approve(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in := ports.ApproveInput{RiskTier: req.RiskTier, APRPercent: req.APRPercent}
	err := h.actions.ApproveInvoice(c.Request().Context(), middleware.SessionID(c),
		c.Param("id"), in, req.Credentials.toCredentials())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]string{"id": c.Param("id")}})
}

// MarkPaid records a repayment against a funded invoice.
//
// @Summary      Mark an invoice paid
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Invoice ID"
// @Param        body  body      markPaidRequest  true  "Repayment amount"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Router       /admin/invoices/{id}/mark-paid [post]
func (h *ActionHandler) MarkPaid(c echo.Context) error {
	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err := h.actions.MarkInvoicePaid(c.Request().Context(), middleware.SessionID(c),
		c.Param("id"), req.Amount, req.Credentials.toCredentials())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]string{"id": c.Param("id")}})
}

// Fund commits investor capital to a listing.
//
// @Summary      Fund an invoice
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Invoice ID"
// @Param        body  body      fundRequest  true  "Funding terms"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /invoices/{id}/fund [post]
func (h *ActionHandler) Fund(c echo.Context) error {
	var req fundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in := ports.FundInput{Amount: req.Amount, APRPercent: req.APRPercent, TermMonths: req.TermMonths}
	err := h.actions.FundInvoice(c.Request().Context(), middleware.SessionID(c),
		c.Param("id"), in, req.Credentials.toCredentials())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]string{"id": c.Param("id")}})
}

// Create validates and creates an SME invoice draft, optionally submitting
// it in the same flow.
//
// @Summary      Create an invoice
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        body  body      createInvoiceRequest  true  "Invoice draft"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /invoices [post]
func (h *ActionHandler) Create(c echo.Context) error {
	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	draft := ports.InvoiceDraft{
		Title:         req.Title,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TermMonths:    req.TermMonths,
		APRPercent:    req.APRPercent,
		DueDate:       req.DueDate,
		FundingTarget: req.FundingTarget,
		EmergencyLane: req.EmergencyLane,
		Tags:          req.Tags,
	}
	id, err := h.actions.CreateInvoice(c.Request().Context(), middleware.SessionID(c),
		draft, req.Submit, req.Credentials.toCredentials())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataResponse{Data: map[string]string{"id": id}})
}

// Submit sends a draft invoice to admin review.
//
// @Summary      Submit an invoice
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Invoice ID"
// @Param        body  body      submitRequest  false  "Optional credentials"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Router       /invoices/{id}/submit [post]
func (h *ActionHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err := h.actions.SubmitInvoice(c.Request().Context(), middleware.SessionID(c),
		c.Param("id"), req.Credentials.toCredentials())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]string{"id": c.Param("id")}})
}

// Deposit credits the simulated investor wallet.
//
// @Summary      Deposit into the wallet simulation
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        body  body      depositRequest  true  "Deposit amount"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Router       /wallet/deposit [post]
func (h *ActionHandler) Deposit(c echo.Context) error {
	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	balance, err := h.actions.Deposit(c.Request().Context(), middleware.SessionID(c), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]float64{"balance": balance}})
}
